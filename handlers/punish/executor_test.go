package punish

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"automod-bot/automod"
	"automod-bot/model"
	"automod-bot/tasks/modlog"
	"automod-bot/utils/database/warnings"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeActions struct {
	mu        sync.Mutex
	deleted   []string
	timeouts  map[string]time.Time
	kicked    []string
	banned    []string
	embeds    map[string][]*discordgo.MessageEmbed
	failKicks bool
}

func newFakeActions() *fakeActions {
	return &fakeActions{timeouts: map[string]time.Time{}, embeds: map[string][]*discordgo.MessageEmbed{}}
}

func (f *fakeActions) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeActions) GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeouts[userID] = *until
	return nil
}

func (f *fakeActions) GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKicks {
		return errors.New("missing permissions")
	}
	f.kicked = append(f.kicked, userID)
	return nil
}

func (f *fakeActions) GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeActions) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds[channelID] = append(f.embeds[channelID], embed)
	return &discordgo.Message{ID: "log", ChannelID: channelID}, nil
}

func (f *fakeActions) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

var executorEpoch = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestExecutor(t *testing.T, fa *fakeActions) *Executor {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, warnings.Migrate(db))
	t.Cleanup(func() { db.Close() })

	q := modlog.NewQueue(16, rate.Inf, 1)
	q.Start()
	t.Cleanup(q.Stop)

	e := NewExecutor(fa, warnings.NewStore(db), q, "bot")
	e.Now = func() time.Time { return executorEpoch }
	return e
}

func evidence(ids ...string) []*automod.Message {
	msgs := make([]*automod.Message, len(ids))
	for i, id := range ids {
		msgs[i] = &automod.Message{ID: id, ChannelID: "c1", GuildID: "g1", AuthorID: "u1"}
	}
	return msgs
}

func TestSelectTriggerPicksMostSevere(t *testing.T) {
	assert := assert.New(t)
	triggers := []automod.Trigger{
		{Rule: "a", Punishment: model.Punishment{Action: model.ActionDelete}},
		{Rule: "b", Punishment: model.Punishment{Action: model.ActionTimeout, Duration: time.Minute}},
		{Rule: "c", Punishment: model.Punishment{Action: model.ActionWarn}},
		{Rule: "d", Punishment: model.Punishment{Action: model.ActionTimeout, Duration: time.Hour}},
	}
	assert.Equal("b", SelectTrigger(triggers).Rule)
	assert.Nil(SelectTrigger(nil))
}

func TestExecuteTimeoutDeletesEvidence(t *testing.T) {
	assert := assert.New(t)
	fa := newFakeActions()
	e := newTestExecutor(t, fa)

	triggers := []automod.Trigger{
		{Rule: "repeat", Punishment: model.Punishment{Action: model.ActionDelete}, CausedBy: evidence("m1", "m2")},
		{Rule: "pressure", Punishment: model.Punishment{Action: model.ActionTimeout, Duration: 10 * time.Minute}, CausedBy: evidence("m2")},
	}
	res, err := e.Execute(context.Background(), "g1", "u1", model.GuildConfig{DeleteEvidence: true, LogChannelID: "log"}, triggers)
	require.NoError(t, err)

	assert.Equal("pressure", res.Trigger.Rule)
	assert.Equal(2, res.Deleted, "evidence is deleted once per message")
	assert.ElementsMatch([]string{"m1", "m2"}, fa.deleted)
	assert.Equal(executorEpoch.Add(10*time.Minute), fa.timeouts["u1"])
	require.Len(t, fa.embeds["log"], 1)
	assert.Equal("INFO Log", fa.embeds["log"][0].Title)
}

func TestExecuteWarnRecordsWarning(t *testing.T) {
	assert := assert.New(t)
	fa := newFakeActions()
	e := newTestExecutor(t, fa)

	triggers := []automod.Trigger{{Rule: "pressure", Reason: "too fast", Punishment: model.Punishment{Action: model.ActionWarn}, CausedBy: evidence("m1")}}
	res, err := e.Execute(context.Background(), "g1", "u1", model.GuildConfig{LogChannelID: "log"}, triggers)
	require.NoError(t, err)
	assert.Equal(int64(1), res.WarningID)
	assert.Empty(fa.deleted, "warn alone keeps the messages")

	current, err := e.Warnings.Current(context.Background(), "g1", 1)
	require.NoError(t, err)
	assert.Equal("bot", current.ModeratorID)
	assert.Contains(current.Reason, "too fast")
	require.Len(t, fa.embeds["log"], 1)
	assert.Equal("警告ID: 1 | 版本: 1", fa.embeds["log"][0].Footer.Text)
}

func TestConcurrentWarningsGetDistinctIDs(t *testing.T) {
	fa := newFakeActions()
	e := newTestExecutor(t, fa)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			triggers := []automod.Trigger{{Rule: "r", Punishment: model.Punishment{Action: model.ActionWarn}}}
			_, err := e.Execute(context.Background(), "g1", fmt.Sprintf("u%d", i), model.GuildConfig{}, triggers)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := e.Warnings.ListCurrentByGuild(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, list, 10)
	for i, w := range list {
		assert.Equal(t, int64(i+1), w.WarningID)
	}
}

func TestExecuteReportsFailures(t *testing.T) {
	assert := assert.New(t)
	fa := newFakeActions()
	fa.failKicks = true
	e := newTestExecutor(t, fa)

	triggers := []automod.Trigger{{Rule: "r", Punishment: model.Punishment{Action: model.ActionKick}}}
	_, err := e.Execute(context.Background(), "g1", "u1", model.GuildConfig{LogChannelID: "log"}, triggers)
	assert.Error(err)
	require.Len(t, fa.embeds["log"], 2)
	assert.Equal("ERROR Log", fa.embeds["log"][1].Title)
	assert.Len(fa.embeds["dm-u1"], 1, "the member is told before being removed")

	res, err := e.Execute(context.Background(), "g1", "u1", model.GuildConfig{}, nil)
	assert.NoError(err)
	assert.Equal(model.ActionNone, res.Applied.Action)
}
