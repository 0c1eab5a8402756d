package model

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMostSevere(t *testing.T) {
	assert := assert.New(t)

	timeout := Punishment{Action: ActionTimeout, Duration: time.Minute}
	assert.Equal(timeout, MostSevere(Punishment{Action: ActionDelete}, timeout, Punishment{Action: ActionWarn}))
	assert.Equal(ActionBan, MostSevere(timeout, Punishment{Action: ActionBan}).Action)
	assert.Equal(ActionNone, MostSevere().Action)

	// first wins on ties
	longer := Punishment{Action: ActionTimeout, Duration: time.Hour}
	assert.Equal(timeout, MostSevere(timeout, longer))
}

func TestPunishmentValidate(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(Punishment{Action: ActionKick}.Validate())
	assert.Error(Punishment{Action: "explode"}.Validate())
	assert.Error(Punishment{Action: ActionTimeout}.Validate())
	assert.NoError(Punishment{Action: ActionTimeout, Duration: 5 * time.Minute}.Validate())
}

func TestWarningExpired(t *testing.T) {
	assert := assert.New(t)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &Warning{CreatedAt: created.Unix()}

	assert.False(w.Expired(0, created.Add(1000*time.Hour)), "zero expiry never expires")
	assert.False(w.Expired(24*time.Hour, created.Add(23*time.Hour)))
	assert.True(w.Expired(24*time.Hour, created.Add(24*time.Hour)), "boundary counts as expired")
	assert.True(w.Expired(24*time.Hour, created.Add(48*time.Hour)))

	w.Permanent = true
	assert.False(w.Expired(24*time.Hour, created.Add(48*time.Hour)))
}

func TestWarningIsCurrent(t *testing.T) {
	w := &Warning{}
	assert.True(t, w.IsCurrent())
	w.ValidUntil = sql.NullInt64{Int64: 1, Valid: true}
	assert.False(t, w.IsCurrent())
}
