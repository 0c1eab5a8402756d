package warnings

import (
	"context"
	"fmt"
	"log"
	"time"

	"automod-bot/bot"
	"automod-bot/handlers/punish"
	"automod-bot/model"
	"automod-bot/utils"
	warnings_db "automod-bot/utils/database/warnings"

	"github.com/bwmarrin/discordgo"
)

const commandTimeout = 30 * time.Second

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func newRecorder(s *discordgo.Session, b *bot.Bot, guildID string) *recorder {
	return &recorder{
		store:        b.Warnings,
		queue:        b.ModLog,
		poster:       s,
		logChannelID: b.GetConfig().Automod.Guilds[guildID].LogChannelID,
	}
}

func HandleWarnCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.GuildID == "" {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	data := model.WarningData{
		UserID:      targetUser.ID,
		ModeratorID: utils.InteractionUserID(i.Interaction),
		Reason:      opts["reason"].StringValue(),
	}
	if opt, ok := opts["permanent"]; ok {
		data.Permanent = opt.BoolValue()
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	w, err := newRecorder(s, b, i.GuildID).create(ctx, i.GuildID, data)
	if err != nil {
		log.Printf("[Warnings] Error creating warning for %s: %v", targetUser.ID, err)
		utils.SendFollowUpError(s, i.Interaction, describeError(err, 0))
		return
	}

	embed := punish.WarningEmbed(w, "警告")
	utils.SendFollowUpEmbed(s, i.Interaction, embed)

	guildName := i.GuildID
	if guild, err := s.Guild(i.GuildID); err == nil {
		guildName = guild.Name
	}
	dm := punish.WarningEmbed(w, fmt.Sprintf("你在 %s 收到了一次警告", guildName))
	if err := utils.SendPrivateEmbed(s, targetUser.ID, dm); err != nil {
		log.Printf("[Warnings] Could not notify %s: %v", targetUser.ID, err)
	}
}

func HandleWarningsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	opts := optionMap(i)
	var list []model.Warning
	var err error
	title := "本服务器的警告"
	if opt, ok := opts["user"]; ok {
		user := opt.UserValue(s)
		title = fmt.Sprintf("%s 的警告", user.Username)
		list, err = b.Warnings.ListCurrentByUser(ctx, i.GuildID, user.ID)
	} else {
		list, err = b.Warnings.ListCurrentByGuild(ctx, i.GuildID)
	}
	if err != nil {
		log.Printf("[Warnings] Error listing warnings: %v", err)
		utils.SendFollowUpError(s, i.Interaction, describeError(err, 0))
		return
	}

	expiresAfter := b.GetConfig().Automod.Guilds[i.GuildID].Warnings.ExpiresAfter
	startPaginator(s, i, warningPages(list, title, expiresAfter, time.Now()))
}

func HandleWarningEditCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i)
	warningID := opts["id"].IntValue()
	var reason *string
	var permanent *bool
	if opt, ok := opts["reason"]; ok {
		v := opt.StringValue()
		reason = &v
	}
	if opt, ok := opts["permanent"]; ok {
		v := opt.BoolValue()
		permanent = &v
	}
	if reason == nil && permanent == nil {
		utils.SendFollowUpError(s, i.Interaction, "请至少提供一个要修改的字段。")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	w, err := newRecorder(s, b, i.GuildID).edit(ctx, i.GuildID, warningID, reason, permanent, utils.InteractionUserID(i.Interaction))
	if err != nil {
		log.Printf("[Warnings] Error editing warning #%d: %v", warningID, err)
		utils.SendFollowUpError(s, i.Interaction, describeError(err, warningID))
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, punish.WarningEmbed(w, "警告已编辑"))
}

func HandleWarningRevertCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	opts := optionMap(i)
	warningID := opts["id"].IntValue()
	version := int(opts["version"].IntValue())

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	w, err := newRecorder(s, b, i.GuildID).revert(ctx, i.GuildID, warningID, version, utils.InteractionUserID(i.Interaction))
	if err != nil {
		log.Printf("[Warnings] Error reverting warning #%d to v%d: %v", warningID, version, err)
		utils.SendFollowUpError(s, i.Interaction, describeError(err, warningID))
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, punish.WarningEmbed(w, fmt.Sprintf("警告已回滚到 v%d", version)))
}

func HandleWarningHistoryCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	warningID := optionMap(i)["id"].IntValue()
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	history, err := b.Warnings.History(ctx, i.GuildID, warningID)
	if err != nil {
		log.Printf("[Warnings] Error fetching history of warning #%d: %v", warningID, err)
		utils.SendFollowUpError(s, i.Interaction, describeError(err, warningID))
		return
	}
	if len(history) == 0 {
		utils.SendFollowUpError(s, i.Interaction, describeError(warnings_db.ErrNotFound, warningID))
		return
	}
	startPaginator(s, i, historyPages(history, warningID))
}

func startPaginator(s *discordgo.Session, i *discordgo.InteractionCreate, pages []*discordgo.MessageEmbed) {
	p := utils.NewPaginator(s, i.Interaction, pages)
	if err := p.Start(); err != nil {
		log.Printf("[Warnings] Failed to start paginator: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "无法显示结果。")
	}
}
