package automod

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"automod-bot/model"
)

// BuildRules turns a guild's rule config into rule instances, in config order.
func BuildRules(cfg model.GuildConfig, hasher *Hasher) ([]Rule, error) {
	rules := make([]Rule, 0, len(cfg.Rules))
	seen := make(map[string]bool, len(cfg.Rules))
	for i, rc := range cfg.Rules {
		name := rc.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", rc.Type, i)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate rule name %q", name)
		}
		seen[name] = true

		if err := rc.Punishment.Validate(); err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}

		switch rc.Type {
		case "pressure":
			if rc.Limit <= 0 {
				return nil, fmt.Errorf("rule %s: pressure limit must be positive", name)
			}
			rules = append(rules, NewPressureRule(name, pressureWeights(rc.Weights), rc.Limit, rc.Punishment))
		default:
			strategy, err := ParseIdentifierStrategy(rc.Type)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", name, err)
			}
			r, err := NewRepeatRule(name, strategy, rc.MaxRepeats, rc.Punishment, hasher)
			if err != nil {
				return nil, err
			}
			rules = append(rules, r)
		}
	}
	return rules, nil
}

func pressureWeights(cfg *model.PressureConfig) PressureWeights {
	w := DefaultPressureWeights()
	if cfg == nil {
		return w
	}
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&w.Base, cfg.Base)
	set(&w.Embed, cfg.Embed)
	set(&w.Length, cfg.Length)
	set(&w.Line, cfg.Line)
	set(&w.Mention, cfg.Mention)
	set(&w.Repeat, cfg.Repeat)
	set(&w.Decay, cfg.Decay)
	return w
}

// Registry holds one engine per enabled guild.
type Registry struct {
	Logger *slog.Logger
	Hasher *Hasher

	mu      sync.RWMutex
	engines map[string]*Engine
}

func NewRegistry(logger *slog.Logger, hasher *Hasher) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		Logger:  logger,
		Hasher:  hasher,
		engines: make(map[string]*Engine),
	}
}

// Load rebuilds all engines from cfg. Nothing is replaced if any guild's rules are invalid.
// Rebuilt engines start with empty member state.
func (r *Registry) Load(cfg model.AutomodConfig) error {
	engines := make(map[string]*Engine, len(cfg.Guilds))
	for guildID, gc := range cfg.Guilds {
		if !gc.Enable {
			continue
		}
		rules, err := BuildRules(gc, r.Hasher)
		if err != nil {
			return fmt.Errorf("guild %s: %w", guildID, err)
		}
		eng := NewEngine(r.Logger.With("guild", guildID))
		for _, rule := range rules {
			eng.RegisterRule(rule)
		}
		engines[guildID] = eng
	}

	r.mu.Lock()
	r.engines = engines
	r.mu.Unlock()
	r.Logger.Info("automod rules loaded", "guilds", len(engines))
	return nil
}

func (r *Registry) Engine(guildID string) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eng, ok := r.engines[guildID]
	return eng, ok
}

// Sweep evicts member state last touched before now-maxAge in every guild.
func (r *Registry) Sweep(maxAge time.Duration, now time.Time) int {
	r.mu.RLock()
	engines := make([]*Engine, 0, len(r.engines))
	for _, eng := range r.engines {
		engines = append(engines, eng)
	}
	r.mu.RUnlock()

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, eng := range engines {
		removed += eng.Sweep(cutoff)
	}
	stateEvictionCount.Add(float64(removed))
	return removed
}

// Tracked reports, per guild and rule name, how many members currently have state.
func (r *Registry) Tracked() map[string]map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]map[string]int, len(r.engines))
	for guildID, eng := range r.engines {
		perRule := make(map[string]int)
		for _, rule := range eng.Rules() {
			perRule[rule.Name()] = rule.Tracked()
		}
		out[guildID] = perRule
	}
	return out
}
