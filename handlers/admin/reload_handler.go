package admin

import (
	"fmt"

	"automod-bot/bot"
	"automod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func HandleReloadConfig(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	err := b.ReloadAutomod()
	if err != nil {
		utils.SendErrorResponse(s, i, fmt.Sprintf("配置重载失败: %v", err))
		utils.LogWarn(s, b.GetConfig().LogChannelID, "Automod", "Reload",
			fmt.Sprintf("Reload by <@%s> failed, previous rules kept: %v", utils.InteractionUserID(i.Interaction), err))
		return
	}
	utils.SendEphemeralResponse(s, i, "✅ 自动管理配置已成功重载！成员状态已重置。")
	utils.LogInfo(s, b.GetConfig().LogChannelID, "Automod", "Reload",
		fmt.Sprintf("Automod configuration reloaded by <@%s>", utils.InteractionUserID(i.Interaction)))
}
