package bot

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"automod-bot/automod"
	"automod-bot/commands"
	"automod-bot/config"
	"automod-bot/handlers/punish"
	"automod-bot/model"
	"automod-bot/tasks/modlog"
	"automod-bot/utils"
	"automod-bot/utils/database/warnings"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"golang.org/x/time/rate"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	config             atomic.Value // *model.Config
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	Warnings           *warnings.Store
	Registry           *automod.Registry
	Executor           *punish.Executor
	ModLog             *modlog.Queue
	PunishLock         *utils.PunishLock
	Logger             *slog.Logger
	scheduler          *Scheduler
	metricsServer      *http.Server
	StartedAt          time.Time
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.Warnings.DB
}

func (b *Bot) GetScheduler() *Scheduler {
	return b.scheduler
}

func New(cfg *model.Config, store *warnings.Store) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	dg.StateEnabled = true

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	hasher := automod.NewHasher(automod.RobustHTTPClient(logger), logger)
	registry := automod.NewRegistry(logger, hasher)
	if err := registry.Load(cfg.Automod); err != nil {
		return nil, fmt.Errorf("failed to build automod rules: %w", err)
	}

	// at most one log post per second, bursts of 3
	queue := modlog.NewQueue(256, rate.Every(time.Second), 3)

	b := &Bot{
		Session:    dg,
		Warnings:   store,
		Registry:   registry,
		Executor:   punish.NewExecutor(dg, store, queue, cfg.AppID),
		ModLog:     queue,
		PunishLock: utils.NewPunishLock(30 * time.Second),
		Logger:     logger,
		StartedAt:  time.Now(),
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	b.ModLog.Stop()
	if b.metricsServer != nil {
		b.metricsServer.Close()
	}
	b.Session.Close()
	if err := b.Warnings.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

func (b *Bot) RefreshCommands(guildID string) {
	guildCfg, ok := b.GetConfig().Automod.Guilds[guildID]
	if !ok {
		log.Printf("Could not find automod config for guild: %s", guildID)
		return
	}
	log.Printf("Updating commands for guild %s", guildID)

	cmds := commands.GenerateCommands(&guildCfg)
	log.Printf("Registering %d new commands for guild %s...", len(cmds), guildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, guildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}

// ReloadAutomod re-reads the rule file and swaps in new engines. On error the
// running rules are kept.
func (b *Bot) ReloadAutomod() error {
	log.Println("Reloading automod configuration...")
	automodCfg, err := config.LoadAutomod(config.AutomodConfigPath())
	if err != nil {
		log.Printf("Error reloading automod config: %v", err)
		return err
	}
	if err := b.Registry.Load(automodCfg); err != nil {
		log.Printf("Error building automod rules: %v", err)
		return err
	}

	newCfg := *b.GetConfig()
	newCfg.Automod = automodCfg
	b.config.Store(&newCfg)
	log.Println("Automod configuration reloaded successfully.")

	for guildID := range automodCfg.Guilds {
		go b.RefreshCommands(guildID)
	}
	return nil
}
