package handlers

import (
	"automod-bot/bot"
	"automod-bot/handlers/admin"
	"automod-bot/handlers/warnings"

	"github.com/bwmarrin/discordgo"
)

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"warn": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			warnings.HandleWarnCommand(s, i, b)
		},
		"warnings": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			warnings.HandleWarningsCommand(s, i, b)
		},
		"warning_edit": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			warnings.HandleWarningEditCommand(s, i, b)
		},
		"warning_revert": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			warnings.HandleWarningRevertCommand(s, i, b)
		},
		"warning_history": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			warnings.HandleWarningHistoryCommand(s, i, b)
		},
		"automod_status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !requireAdmin(s, i, b) {
				return
			}
			SystemInfoHandler(s, i, b)
		},
		"automod_reload": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !requireAdmin(s, i, b) {
				return
			}
			admin.HandleReloadConfig(s, i, b)
		},
	}
}
