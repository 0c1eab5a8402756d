package commands

import (
	"automod-bot/commands/defs"
	"automod-bot/model"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns the slash commands registered in a guild.
// Guilds with automod disabled only get the warning commands.
func GenerateCommands(guildCfg *model.GuildConfig) []*discordgo.ApplicationCommand {
	cmds := []*discordgo.ApplicationCommand{
		defs.Warn,
		defs.Warnings,
		defs.WarningEdit,
		defs.WarningRevert,
		defs.WarningHistory,
	}
	if guildCfg != nil && guildCfg.Enable {
		cmds = append(cmds, defs.AutomodStatus, defs.AutomodReload)
	}
	return cmds
}
