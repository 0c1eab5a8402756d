package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"automod-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAutomod(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "automod.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sweep_interval: 5m
guilds:
  "123":
    enable: true
    log_channel_id: "456"
    exempt_role_ids: "r1,r2"
    warnings:
      expires_after: 7d
    rules:
      - type: pressure
        limit: 80
        weights:
          decay: 4
        punishment:
          action: timeout
          duration: 15m
      - type: cross_channel_repeat
        max_repeats: 3
        punishment:
          action: kick
`), 0644))

	cfg, err := LoadAutomod(path)
	require.NoError(t, err)

	assert.Equal(6*time.Hour, cfg.StateMaxAge, "default")
	assert.Equal(5*time.Minute, cfg.SweepInterval)
	g := cfg.Guilds["123"]
	assert.True(g.Enable)
	assert.Equal([]string{"r1", "r2"}, g.ExemptRoleIDs)
	assert.Equal(7*24*time.Hour, g.Warnings.ExpiresAfter)
	require.Len(t, g.Rules, 2)
	assert.Equal(model.Punishment{Action: model.ActionTimeout, Duration: 15 * time.Minute}, g.Rules[0].Punishment)
	require.NotNil(t, g.Rules[0].Weights)
	assert.Equal(4.0, *g.Rules[0].Weights.Decay)
	assert.Nil(g.Rules[0].Weights.Base)
	assert.Equal(3, g.Rules[1].MaxRepeats)
}

func TestLoadAutomodWritesSample(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "nested", "automod.yaml")

	cfg, err := LoadAutomod(path)
	require.NoError(t, err)
	assert.FileExists(path)
	sample := cfg.Guilds["000000000000000000"]
	assert.False(sample.Enable)
	assert.Len(sample.Rules, 4)
	assert.Equal(30*24*time.Hour, sample.Warnings.ExpiresAfter)
}

func TestLoadAutomodRejectsBadDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automod.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state_max_age: soon\n"), 0644))
	_, err := LoadAutomod(path)
	assert.Error(t, err)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("APP_ID", "1")
	_, err := Load()
	assert.Error(t, err)
}
