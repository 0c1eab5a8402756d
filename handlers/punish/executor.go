package punish

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"automod-bot/automod"
	"automod-bot/model"
	"automod-bot/tasks/modlog"
	"automod-bot/utils"
	"automod-bot/utils/database/warnings"

	"github.com/bwmarrin/discordgo"
)

// Actions is the part of *discordgo.Session the executor uses.
type Actions interface {
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Executor applies the punishments automod rules ask for.
type Executor struct {
	Session  Actions
	Warnings *warnings.Store
	Queue    *modlog.Queue
	// Recorded as the moderator of automatic warnings.
	BotUserID string
	Now       func() time.Time
}

// Result describes what Execute did.
type Result struct {
	Trigger   *automod.Trigger
	Applied   model.Punishment
	Deleted   int
	WarningID int64
}

func NewExecutor(session Actions, store *warnings.Store, queue *modlog.Queue, botUserID string) *Executor {
	return &Executor{
		Session:   session,
		Warnings:  store,
		Queue:     queue,
		BotUserID: botUserID,
		Now:       time.Now,
	}
}

// SelectTrigger returns the trigger carrying the most severe punishment, the first one on ties.
func SelectTrigger(triggers []automod.Trigger) *automod.Trigger {
	if len(triggers) == 0 {
		return nil
	}
	punishments := make([]model.Punishment, len(triggers))
	for i, t := range triggers {
		punishments[i] = t.Punishment
	}
	chosen := model.MostSevere(punishments...)
	for i := range triggers {
		if triggers[i].Punishment == chosen {
			return &triggers[i]
		}
	}
	return &triggers[0]
}

// Execute reconciles triggers for one member into a single punishment and applies it.
// Every step is attempted; the returned error joins the failures.
func (e *Executor) Execute(ctx context.Context, guildID, userID string, guildCfg model.GuildConfig, triggers []automod.Trigger) (*Result, error) {
	chosen := SelectTrigger(triggers)
	if chosen == nil || chosen.Punishment.Action == model.ActionNone {
		return &Result{Applied: model.Punishment{Action: model.ActionNone}}, nil
	}
	res := &Result{Trigger: chosen, Applied: chosen.Punishment}
	var errs []error

	if guildCfg.DeleteEvidence || chosen.Punishment.Action == model.ActionDelete {
		n, err := e.deleteEvidence(triggers)
		res.Deleted = n
		if err != nil {
			errs = append(errs, err)
		}
	}

	reason := fmt.Sprintf("[automod:%s] %s", chosen.Rule, chosen.Reason)
	switch chosen.Punishment.Action {
	case model.ActionDelete:
	case model.ActionWarn:
		id, err := e.warn(ctx, guildID, userID, guildCfg.LogChannelID, reason)
		res.WarningID = id
		if err != nil {
			errs = append(errs, err)
		}
	case model.ActionTimeout:
		until := e.Now().Add(chosen.Punishment.Duration)
		if err := e.Session.GuildMemberTimeout(guildID, userID, &until, discordgo.WithAuditLogReason(truncate(reason, 512))); err != nil {
			errs = append(errs, fmt.Errorf("failed to time out member %s: %w", userID, err))
		}
	case model.ActionKick:
		e.notifyMember(userID, chosen)
		if err := e.Session.GuildMemberDeleteWithReason(guildID, userID, truncate(reason, 512)); err != nil {
			errs = append(errs, fmt.Errorf("failed to kick member %s: %w", userID, err))
		}
	case model.ActionBan:
		e.notifyMember(userID, chosen)
		if err := e.Session.GuildBanCreateWithReason(guildID, userID, truncate(reason, 512), 0); err != nil {
			errs = append(errs, fmt.Errorf("failed to ban member %s: %w", userID, err))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported punishment action %q", chosen.Punishment.Action))
	}

	if chosen.Punishment.Action != model.ActionWarn {
		e.postLog(guildCfg.LogChannelID, false, chosen, userID, res)
	}

	err := errors.Join(errs...)
	if err != nil {
		log.Printf("[Automod] Punishing %s in guild %s: %v", userID, guildID, err)
		e.postLog(guildCfg.LogChannelID, true, chosen, userID, res)
	}
	return res, err
}

func (e *Executor) deleteEvidence(triggers []automod.Trigger) (int, error) {
	seen := make(map[string]bool)
	deleted := 0
	var errs []error
	for _, t := range triggers {
		for _, msg := range t.CausedBy {
			if msg == nil || seen[msg.ID] {
				continue
			}
			seen[msg.ID] = true
			if err := e.Session.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
				errs = append(errs, fmt.Errorf("failed to delete message %s: %w", msg.ID, err))
				continue
			}
			deleted++
		}
	}
	return deleted, errors.Join(errs...)
}

// warn records the warning and posts its log message as one serialized job, so
// concurrent automod hits never interleave between claiming an ID and announcing it.
func (e *Executor) warn(ctx context.Context, guildID, userID, logChannelID, reason string) (int64, error) {
	if e.Warnings == nil {
		return 0, errors.New("warning store is not configured")
	}
	var id int64
	job := func(ctx context.Context) error {
		w, err := e.Warnings.Create(ctx, guildID, model.WarningData{
			UserID:      userID,
			ModeratorID: e.BotUserID,
			Reason:      reason,
		})
		if err != nil {
			return fmt.Errorf("failed to record warning for %s: %w", userID, err)
		}
		id = w.WarningID
		if logChannelID != "" {
			if _, err := e.Session.ChannelMessageSendEmbed(logChannelID, WarningEmbed(w, "Automatic warning issued")); err != nil {
				log.Printf("[Automod] Failed to post warning #%d log: %v", w.WarningID, err)
			}
		}
		return nil
	}
	var err error
	if e.Queue != nil {
		err = e.Queue.Do(ctx, "automod-warn", job)
	} else {
		err = job(ctx)
	}
	return id, err
}

func (e *Executor) notifyMember(userID string, t *automod.Trigger) {
	embed := &discordgo.MessageEmbed{
		Title:       "Automatic moderation",
		Description: fmt.Sprintf("You received a %s for: %s", t.Punishment, t.Rule),
		Color:       utils.ActionColor(t.Punishment.Action),
	}
	if err := utils.SendPrivateEmbed(e.Session, userID, embed); err != nil {
		log.Printf("[Automod] %v", err)
	}
}

func (e *Executor) postLog(channelID string, failed bool, t *automod.Trigger, userID string, res *Result) {
	var b strings.Builder
	fmt.Fprintf(&b, "User: <@%s>\nPunishment: %s\n", userID, t.Punishment)
	if res.Deleted > 0 {
		fmt.Fprintf(&b, "Deleted messages: %d\n", res.Deleted)
	}
	b.WriteString(t.Reason)
	send := utils.LogInfo
	if failed {
		send = utils.LogError
	}
	_ = send(e.Session, channelID, "Automod", t.Rule, b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
