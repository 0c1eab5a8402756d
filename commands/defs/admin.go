package defs

import "github.com/bwmarrin/discordgo"

var adminPermission int64 = discordgo.PermissionManageGuild

var AutomodStatus = &discordgo.ApplicationCommand{
	Name:                     "automod_status",
	Description:              "Display automod and system status information",
	DefaultMemberPermissions: &adminPermission,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "自动管理状态",
		discordgo.ChineseTW: "自動管理狀態",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "显示自动管理与系统状态",
		discordgo.ChineseTW: "顯示自動管理與系統狀態",
	},
}

var AutomodReload = &discordgo.ApplicationCommand{
	Name:                     "automod_reload",
	Description:              "Reload the automod rule configuration",
	DefaultMemberPermissions: &adminPermission,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "重载自动管理",
		discordgo.ChineseTW: "重載自動管理",
	},
}
