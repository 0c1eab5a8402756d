package model

import "time"

// Config 存储应用程序的配置
type Config struct {
	BotToken     string
	AppID        string
	LogChannelID string
	DatabasePath string
	MetricsAddr  string
	Automod      AutomodConfig
}

// AutomodConfig is the content of data/automod.yaml.
type AutomodConfig struct {
	// Members whose last scored message is older than this are evicted from rule state.
	StateMaxAge   time.Duration          `mapstructure:"state_max_age"`
	SweepInterval time.Duration          `mapstructure:"sweep_interval"`
	Guilds        map[string]GuildConfig `mapstructure:"guilds"`
}

// GuildConfig 定义了每个服务器的自动管理配置
type GuildConfig struct {
	Name           string         `mapstructure:"name"`
	Enable         bool           `mapstructure:"enable"`
	LogChannelID   string         `mapstructure:"log_channel_id"`
	AdminRoleIDs   []string       `mapstructure:"admin_role_ids"`
	ExemptRoleIDs  []string       `mapstructure:"exempt_role_ids"`
	DeleteEvidence bool           `mapstructure:"delete_evidence"`
	Warnings       WarningsConfig `mapstructure:"warnings"`
	Rules          []RuleConfig   `mapstructure:"rules"`
}

// WarningsConfig controls read-time warning expiry.
type WarningsConfig struct {
	// Zero means warnings never expire.
	ExpiresAfter time.Duration `mapstructure:"expires_after"`
}

// RuleConfig describes one automod rule instance. Several instances of the same type
// with different parameters may be configured for one guild.
type RuleConfig struct {
	Name       string          `mapstructure:"name"`
	Type       string          `mapstructure:"type"` // pressure, content_repeat, embed_repeat, cross_channel_repeat
	Punishment Punishment      `mapstructure:"punishment"`
	Limit      float64         `mapstructure:"limit"`
	Weights    *PressureConfig `mapstructure:"weights"`
	MaxRepeats int             `mapstructure:"max_repeats"`
}

// PressureConfig overrides the default pressure weights. Unset fields keep their defaults.
type PressureConfig struct {
	Base    *float64 `mapstructure:"base"`
	Embed   *float64 `mapstructure:"embed"`
	Length  *float64 `mapstructure:"length"`
	Line    *float64 `mapstructure:"line"`
	Mention *float64 `mapstructure:"mention"`
	Repeat  *float64 `mapstructure:"repeat"`
	Decay   *float64 `mapstructure:"decay"`
}
