package defs

import "github.com/bwmarrin/discordgo"

var moderatorPermission int64 = discordgo.PermissionModerateMembers

var Warn = &discordgo.ApplicationCommand{
	Name:                     "warn",
	Description:              "Warn a member",
	DefaultMemberPermissions: &moderatorPermission,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "警告",
		discordgo.ChineseTW: "警告",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "警告一位成员并记录",
		discordgo.ChineseTW: "警告一位成員並記錄",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要警告的用户",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "警告原因",
			Required:    true,
			MaxLength:   1000,
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "permanent",
			Description: "永久警告，不会过期",
			Required:    false,
		},
	},
}

var Warnings = &discordgo.ApplicationCommand{
	Name:                     "warnings",
	Description:              "List the warnings of a member",
	DefaultMemberPermissions: &moderatorPermission,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "警告列表",
		discordgo.ChineseTW: "警告列表",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "要查询的用户 (默认为全部)",
			Required:    false,
		},
	},
}

var WarningEdit = &discordgo.ApplicationCommand{
	Name:                     "warning_edit",
	Description:              "Edit a warning, keeping its history",
	DefaultMemberPermissions: &moderatorPermission,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "编辑警告",
		discordgo.ChineseTW: "編輯警告",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "id",
			Description: "警告ID",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "新的原因",
			Required:    false,
			MaxLength:   1000,
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "permanent",
			Description: "是否永久",
			Required:    false,
		},
	},
}

var WarningRevert = &discordgo.ApplicationCommand{
	Name:                     "warning_revert",
	Description:              "Restore an earlier version of a warning",
	DefaultMemberPermissions: &moderatorPermission,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "回滚警告",
		discordgo.ChineseTW: "回滾警告",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "id",
			Description: "警告ID",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "version",
			Description: "要恢复的版本",
			Required:    true,
		},
	},
}

var WarningHistory = &discordgo.ApplicationCommand{
	Name:                     "warning_history",
	Description:              "Show every version of a warning",
	DefaultMemberPermissions: &moderatorPermission,
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "警告历史",
		discordgo.ChineseTW: "警告歷史",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "id",
			Description: "警告ID",
			Required:    true,
		},
	},
}
