package handlers

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"automod-bot/bot"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	// Get CPU info
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	cpuUsage := 0.0
	if len(cpuPercent) > 0 {
		cpuUsage = cpuPercent[0]
	}

	// Get memory info
	vm, _ := mem.VirtualMemory()
	var memUsed, memTotal uint64
	var memPercent float64
	if vm != nil {
		memUsed, memTotal, memPercent = vm.Used, vm.Total, vm.UsedPercent
	}

	// Get host info
	platform, kernel := "unknown", "unknown"
	if hostInfo, err := host.Info(); err == nil {
		platform = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		kernel = hostInfo.KernelVersion
	}

	// Get database size
	var dbSize int64
	if info, err := os.Stat(b.GetConfig().DatabasePath); err == nil {
		dbSize = info.Size() / 1024 / 1024 // in MB
	}

	embed := &discordgo.MessageEmbed{
		Title: "自动管理状态",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS 版本", Value: platform, Inline: true},
			{Name: "🔧 内核版本", Value: kernel, Inline: true},
			{Name: "🐹 Go 版本", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPU 数量", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU 使用率", Value: fmt.Sprintf("%.1f%%", cpuUsage), Inline: true},
			{Name: "🧠 系统内存", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", memPercent, memUsed/1024/1024, memTotal/1024/1024), Inline: true},
			{Name: "🗃️ 数据库大小", Value: fmt.Sprintf("%d MB", dbSize), Inline: true},
			{Name: "⏱️ WebSocket 延迟", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "📬 日志队列", Value: fmt.Sprintf("%d", b.ModLog.Size()), Inline: true},
			{Name: "⏳ 运行时间", Value: time.Since(b.StartedAt).Truncate(time.Second).String(), Inline: true},
			{Name: "📊 跟踪成员", Value: FormatTracked(b.Registry.Tracked()[i.GuildID])},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("系统监控・今天%s", time.Now().Format("15:04")),
		},
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// FormatTracked lists the number of members each rule holds state for, by rule name.
func FormatTracked(tracked map[string]int) string {
	if len(tracked) == 0 {
		return "没有启用的规则"
	}
	names := make([]string, 0, len(tracked))
	for name := range tracked {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, len(names))
	for idx, name := range names {
		lines[idx] = fmt.Sprintf("`%s`: %d", name, tracked[name])
	}
	return strings.Join(lines, "\n")
}
