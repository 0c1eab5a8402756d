package handlers

import (
	"log"

	"automod-bot/bot"
	"automod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			// component clicks are handled by the paginators that own them
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})

	automodHandler := &AutomodHandler{
		Registry: b.Registry,
		Punisher: b.Executor,
		Lock:     b.PunishLock,
		Config:   b.GetConfig,
	}
	b.Session.AddHandler(automodHandler.OnMessageCreate)
}

// requireAdmin answers with an error and returns false unless the invoker holds one of
// the guild's admin roles.
func requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) bool {
	guildCfg, ok := b.GetConfig().Automod.Guilds[i.GuildID]
	if !ok {
		log.Printf("Could not find automod config for guild: %s", i.GuildID)
		utils.SendErrorResponse(s, i, "This server is not configured.")
		return false
	}
	if i.Member == nil || utils.CheckPermission(i.Member.Roles, guildCfg.AdminRoleIDs, nil) != utils.AdminPermission {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return false
	}
	return true
}
