package punish

import (
	"fmt"
	"strings"
	"time"

	"automod-bot/model"
	"automod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// WarningEmbed renders one version of a warning.
func WarningEmbed(w *model.Warning, title string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: title,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "用户", Value: fmt.Sprintf("<@%s>", w.UserID), Inline: true},
			{Name: "操作人", Value: fmt.Sprintf("<@%s>", w.ModeratorID), Inline: true},
			{Name: "原因", Value: orDash(w.Reason)},
		},
		Timestamp: time.Unix(w.CreatedAt, 0).Format(time.RFC3339),
		Color:     getEmbedColor(w.Permanent),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("警告ID: %d | 版本: %d", w.WarningID, w.Version),
		},
	}
	if w.Permanent {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "永久", Value: "是", Inline: true})
	}
	if w.EditedBy.Valid {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "编辑",
			Value: fmt.Sprintf("<@%s> <t:%d:R>", w.EditedBy.String, w.EditedAt.Int64),
		})
	}
	return embed
}

// WarningLine is one entry of a /warnings listing.
func WarningLine(w *model.Warning, expiresAfter time.Duration, now time.Time) string {
	var tags []string
	if w.Permanent {
		tags = append(tags, "永久")
	}
	if w.Expired(expiresAfter, now) {
		tags = append(tags, "已过期")
	}
	if w.Version > 1 {
		tags = append(tags, fmt.Sprintf("v%d", w.Version))
	}
	line := fmt.Sprintf("**#%d** <t:%d:d> by <@%s>: %s", w.WarningID, w.CreatedAt, w.ModeratorID, orDash(w.Reason))
	if len(tags) > 0 {
		line = fmt.Sprintf("%s `%s`", line, strings.Join(tags, ", "))
	}
	if w.Expired(expiresAfter, now) {
		line = "~~" + line + "~~"
	}
	return line
}

// VersionLine is one entry of a /warning_history listing.
func VersionLine(w *model.Warning) string {
	status := "当前"
	if !w.IsCurrent() {
		status = fmt.Sprintf("失效于 <t:%d:f>", w.ValidUntil.Int64)
	}
	line := fmt.Sprintf("**v%d** (%s) 操作人 <@%s>: %s", w.Version, status, w.ModeratorID, orDash(w.Reason))
	if w.EditedBy.Valid {
		line += fmt.Sprintf("\n编辑者 <@%s> <t:%d:R>", w.EditedBy.String, w.EditedAt.Int64)
	}
	return line
}

func getEmbedColor(permanent bool) int {
	if permanent {
		return utils.ColorDarkRed
	}
	return utils.ColorOrange
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
