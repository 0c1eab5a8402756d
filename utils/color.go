package utils

import "automod-bot/model"

// Embed colors.
const (
	ColorGreen   = 0x2ECC71
	ColorBlue    = 0x3498DB
	ColorOrange  = 0xE67E22
	ColorRed     = 0xE74C3C
	ColorDarkRed = 0x992D22
)

var actionColors = map[model.PunishmentAction]int{
	model.ActionNone:    ColorBlue,
	model.ActionDelete:  ColorBlue,
	model.ActionWarn:    ColorOrange,
	model.ActionTimeout: ColorRed,
	model.ActionKick:    ColorDarkRed,
	model.ActionBan:     ColorDarkRed,
}

// ActionColor is the embed color used when announcing a punishment.
func ActionColor(action model.PunishmentAction) int {
	if c, ok := actionColors[action]; ok {
		return c
	}
	return ColorBlue
}
