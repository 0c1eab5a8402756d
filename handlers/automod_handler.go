package handlers

import (
	"context"
	"log"
	"time"

	"automod-bot/automod"
	"automod-bot/handlers/punish"
	"automod-bot/model"
	"automod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// Punisher applies the triggers of one message.
type Punisher interface {
	Execute(ctx context.Context, guildID, userID string, guildCfg model.GuildConfig, triggers []automod.Trigger) (*punish.Result, error)
}

// AutomodHandler runs guild messages through the guild's rule engine and punishes on triggers.
type AutomodHandler struct {
	Registry *automod.Registry
	Punisher Punisher
	Lock     *utils.PunishLock
	Config   func() *model.Config
	Timeout  time.Duration
	Now      func() time.Time
}

// ShouldModerate reports whether automod applies to a message.
// Bots, webhooks, DMs, admins and exempt roles are skipped.
func ShouldModerate(m *discordgo.Message, guildCfg model.GuildConfig) bool {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot || m.WebhookID != "" {
		return false
	}
	if !guildCfg.Enable {
		return false
	}
	var roles []string
	if m.Member != nil {
		roles = m.Member.Roles
	}
	return utils.CheckPermission(roles, guildCfg.AdminRoleIDs, guildCfg.ExemptRoleIDs) == utils.UserPermission
}

func (h *AutomodHandler) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	h.Handle(ctx, m.Message)
}

// Handle processes one message. It returns the executed result, or nil when nothing was punished.
func (h *AutomodHandler) Handle(ctx context.Context, m *discordgo.Message) *punish.Result {
	guildCfg, ok := h.Config().Automod.Guilds[m.GuildID]
	if !ok || !ShouldModerate(m, guildCfg) {
		return nil
	}
	eng, ok := h.Registry.Engine(m.GuildID)
	if !ok {
		return nil
	}

	msg := automod.FromDiscord(m)
	triggers := eng.OnMessage(ctx, msg)
	if len(triggers) == 0 {
		return nil
	}
	// the member's runs restart either way, so the evidence of this punishment isn't counted twice
	defer eng.ResetMember(msg.GuildID, msg.AuthorID)

	if !h.Lock.CheckAndSet(msg.MemberKey(), h.now()) {
		log.Printf("[Automod] Skipping punishment for %s in guild %s, recently punished", msg.AuthorID, msg.GuildID)
		return nil
	}

	res, err := h.Punisher.Execute(ctx, msg.GuildID, msg.AuthorID, guildCfg, triggers)
	if err != nil {
		log.Printf("[Automod] Error executing punishment for %s in guild %s: %v", msg.AuthorID, msg.GuildID, err)
	}
	return res
}

func (h *AutomodHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
