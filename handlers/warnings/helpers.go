package warnings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"automod-bot/handlers/punish"
	"automod-bot/model"
	"automod-bot/tasks/modlog"
	"automod-bot/utils"
	warnings_db "automod-bot/utils/database/warnings"

	"github.com/bwmarrin/discordgo"
)

const (
	warningsPerPage = 10
	versionsPerPage = 5
)

// LogPoster posts warning log embeds.
type LogPoster interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// recorder writes warning versions and announces them in the log channel, one job at a time.
type recorder struct {
	store        *warnings_db.Store
	queue        *modlog.Queue
	poster       LogPoster
	logChannelID string
}

func (r *recorder) run(ctx context.Context, name string, write func(ctx context.Context) (*model.Warning, string, error)) (*model.Warning, error) {
	var result *model.Warning
	err := r.queue.Do(ctx, name, func(ctx context.Context) error {
		w, title, err := write(ctx)
		if err != nil {
			return err
		}
		result = w
		if r.logChannelID != "" && r.poster != nil {
			if _, err := r.poster.ChannelMessageSendEmbed(r.logChannelID, punish.WarningEmbed(w, title)); err != nil {
				log.Printf("[Warnings] Failed to post log for warning #%d: %v", w.WarningID, err)
			}
		}
		return nil
	})
	return result, err
}

func (r *recorder) create(ctx context.Context, guildID string, data model.WarningData) (*model.Warning, error) {
	return r.run(ctx, "warn", func(ctx context.Context) (*model.Warning, string, error) {
		w, err := r.store.Create(ctx, guildID, data)
		return w, "警告已记录", err
	})
}

func (r *recorder) edit(ctx context.Context, guildID string, warningID int64, reason *string, permanent *bool, editorID string) (*model.Warning, error) {
	return r.run(ctx, "warning-edit", func(ctx context.Context) (*model.Warning, string, error) {
		current, err := r.store.Current(ctx, guildID, warningID)
		if err != nil {
			return nil, "", err
		}
		data := current.Data()
		if reason != nil {
			data.Reason = *reason
		}
		if permanent != nil {
			data.Permanent = *permanent
		}
		w, err := r.store.Update(ctx, guildID, warningID, data, editorID)
		return w, "警告已编辑", err
	})
}

func (r *recorder) revert(ctx context.Context, guildID string, warningID int64, version int, editorID string) (*model.Warning, error) {
	return r.run(ctx, "warning-revert", func(ctx context.Context) (*model.Warning, string, error) {
		w, err := r.store.Revert(ctx, guildID, warningID, version, editorID)
		return w, fmt.Sprintf("警告已回滚到 v%d", version), err
	})
}

// describeError turns store errors into a user-facing message.
func describeError(err error, warningID int64) string {
	var versionErr *warnings_db.VersionNotFoundError
	switch {
	case errors.Is(err, warnings_db.ErrNotFound):
		return fmt.Sprintf("警告 #%d 不存在。", warningID)
	case errors.As(err, &versionErr):
		versions := make([]string, len(versionErr.Available))
		for i, v := range versionErr.Available {
			versions[i] = fmt.Sprintf("v%d", v)
		}
		return fmt.Sprintf("警告 #%d 没有版本 v%d。可用版本: %s", warningID, versionErr.Version, strings.Join(versions, ", "))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, modlog.ErrQueueClosed):
		return "操作超时，请稍后重试。"
	default:
		return "处理警告时出错。"
	}
}

// warningPages renders current warnings as paginated embeds. Expired warnings are struck through.
func warningPages(list []model.Warning, title string, expiresAfter time.Duration, now time.Time) []*discordgo.MessageEmbed {
	lines := make([]string, len(list))
	active := 0
	for i := range list {
		lines[i] = punish.WarningLine(&list[i], expiresAfter, now)
		if !list[i].Expired(expiresAfter, now) {
			active++
		}
	}
	if len(list) == 0 {
		lines = []string{"没有警告记录。"}
	}
	return pageEmbeds(lines, warningsPerPage, title, fmt.Sprintf("共 %d 条，有效 %d 条", len(list), active))
}

// historyPages renders every version of one warning, oldest first.
func historyPages(history []model.Warning, warningID int64) []*discordgo.MessageEmbed {
	lines := make([]string, len(history))
	for i := range history {
		lines[i] = punish.VersionLine(&history[i]) + "\n"
	}
	return pageEmbeds(lines, versionsPerPage, fmt.Sprintf("警告 #%d 的历史", warningID), fmt.Sprintf("共 %d 个版本", len(history)))
}

func pageEmbeds(lines []string, perPage int, title, summary string) []*discordgo.MessageEmbed {
	pages := utils.SplitPages(lines, perPage)
	embeds := make([]*discordgo.MessageEmbed, len(pages))
	for i, page := range pages {
		embeds[i] = &discordgo.MessageEmbed{
			Title:       title,
			Description: page,
			Color:       utils.ColorOrange,
			Footer: &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("%s | 第 %d/%d 页", summary, i+1, len(pages)),
			},
		}
	}
	return embeds
}
