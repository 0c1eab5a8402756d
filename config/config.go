package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"automod-bot/model"
	"automod-bot/utils"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultDatabasePath  = "data/automod.db"
	DefaultAutomodConfig = "data/automod.yaml"
)

const sampleAutomodConfig = `# Members whose last message is older than this are forgotten by the rules.
state_max_age: 6h
sweep_interval: 10m
guilds:
  "000000000000000000":
    name: "example"
    enable: false
    log_channel_id: ""
    admin_role_ids: []
    exempt_role_ids: []
    delete_evidence: true
    warnings:
      expires_after: 30d
    rules:
      - name: spam-pressure
        type: pressure
        limit: 60
        punishment:
          action: timeout
          duration: 10m
      - type: content_repeat
        max_repeats: 4
        punishment:
          action: delete
      - type: embed_repeat
        max_repeats: 3
        punishment:
          action: warn
      - type: cross_channel_repeat
        max_repeats: 3
        punishment:
          action: timeout
          duration: 1h
`

// Load loads the configuration from environment variables and the automod YAML file.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		return nil, fmt.Errorf("APP_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, logging will be disabled")
	}

	automodCfg, err := LoadAutomod(AutomodConfigPath())
	if err != nil {
		return nil, err
	}

	return &model.Config{
		BotToken:     token,
		AppID:        appID,
		LogChannelID: logChannelID,
		DatabasePath: envOr("DATABASE_PATH", DefaultDatabasePath),
		MetricsAddr:  os.Getenv("METRICS_ADDR"),
		Automod:      automodCfg,
	}, nil
}

// AutomodConfigPath returns the rule file location, AUTOMOD_CONFIG or the default.
func AutomodConfigPath() string {
	return envOr("AUTOMOD_CONFIG", DefaultAutomodConfig)
}

// LoadAutomod reads the per-guild rule configuration. A sample file is written when none exists.
func LoadAutomod(path string) (model.AutomodConfig, error) {
	var cfg model.AutomodConfig

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("File '%s' not found. Creating a sample file.", path)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return cfg, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(sampleAutomodConfig), 0644); err != nil {
			return cfg, fmt.Errorf("failed to create sample configuration file: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("state_max_age", "6h")
	v.SetDefault("sweep_interval", "10m")

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("error reading the configuration file: %w", err)
	}

	hook := mapstructure.ComposeDecodeHookFunc(
		durationHook,
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return cfg, fmt.Errorf("could not map the configuration to the struct: %w", err)
	}
	if cfg.StateMaxAge <= 0 || cfg.SweepInterval <= 0 {
		return cfg, fmt.Errorf("state_max_age and sweep_interval must be positive")
	}
	return cfg, nil
}

// durationHook accepts Go durations plus a day suffix ("30d").
func durationHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(time.Duration(0)) || from.Kind() != reflect.String {
		return data, nil
	}
	s := data.(string)
	if s == "" {
		return time.Duration(0), nil
	}
	return utils.ParseDuration(s)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
