package bot

import (
	"context"
	"testing"
	"time"

	"automod-bot/automod"
	"automod-bot/model"
	"automod-bot/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	cfg      *model.Config
	registry *automod.Registry
	lock     *utils.PunishLock
}

func (f *fakeProvider) GetConfig() *model.Config { return f.cfg }
func (f *fakeProvider) GetRegistry() *automod.Registry { return f.registry }
func (f *fakeProvider) GetPunishLock() *utils.PunishLock { return f.lock }

func TestSchedulerSweepsIdleState(t *testing.T) {
	assert := assert.New(t)
	epoch := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cfg := &model.Config{Automod: model.AutomodConfig{
		StateMaxAge:   time.Hour,
		SweepInterval: time.Minute,
		Guilds: map[string]model.GuildConfig{
			"g1": {Enable: true, Rules: []model.RuleConfig{
				{Type: "pressure", Limit: 100, Punishment: model.Punishment{Action: model.ActionDelete}},
			}},
		},
	}}
	registry := automod.NewRegistry(nil, automod.NewHasher(nil, nil))
	require.NoError(t, registry.Load(cfg.Automod))

	eng, ok := registry.Engine("g1")
	require.True(t, ok)
	eng.OnMessage(context.Background(), &automod.Message{ID: "m1", GuildID: "g1", ChannelID: "c1", AuthorID: "u1", Content: "hi", CreatedAt: epoch})
	eng.OnMessage(context.Background(), &automod.Message{ID: "m2", GuildID: "g1", ChannelID: "c1", AuthorID: "u2", Content: "hi", CreatedAt: epoch.Add(50 * time.Minute)})

	lock := utils.NewPunishLock(time.Minute)
	lock.CheckAndSet("g1:u1", epoch)

	s := NewScheduler(&fakeProvider{cfg: cfg, registry: registry, lock: lock})
	s.now = func() time.Time { return epoch.Add(90 * time.Minute) }

	assert.Equal(1, s.sweep())
	assert.Equal(map[string]map[string]int{"g1": {"pressure-0": 1}}, registry.Tracked())
	assert.True(lock.CheckAndSet("g1:u1", epoch.Add(90*time.Minute)), "stale locks are released")

	s.Start()
	s.Stop()
	s.Stop()
}
