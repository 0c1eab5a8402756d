package automod

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"automod-bot/model"
)

// Trigger is a rule's request for a punishment. CausedBy is the evidence.
type Trigger struct {
	Rule       string
	Punishment model.Punishment
	Reason     string
	CausedBy   []*Message
}

// Rule is one configured rule instance, owning its own per-member state.
type Rule interface {
	Name() string
	Check(ctx context.Context, msg *Message) (*Trigger, error)
	// Sweep drops state for members whose last message is older than cutoff.
	Sweep(cutoff time.Time) int
	// Tracked is the number of members with state.
	Tracked() int
}

// Resetter is implemented by rules whose per-member state should be cleared once the
// member has been punished.
type Resetter interface {
	Reset(guildID, userID string)
}

// Engine feeds guild messages to every registered rule and collects the triggers.
// It does not apply punishments.
type Engine struct {
	Logger *slog.Logger

	mu    sync.RWMutex
	rules []Rule
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Logger: logger}
}

func (e *Engine) RegisterRule(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, r)
}

func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// OnMessage runs msg through all rules. A rule that errors or panics is logged and
// skipped; the remaining rules still run.
func (e *Engine) OnMessage(ctx context.Context, msg *Message) []Trigger {
	start := time.Now()
	defer func() {
		messageProcessDuration.Observe(time.Since(start).Seconds())
	}()
	messagesProcessed.Inc()

	var triggers []Trigger
	for _, r := range e.Rules() {
		t, err := e.runRule(ctx, r, msg)
		if err != nil {
			ruleErrorCount.WithLabelValues(r.Name()).Inc()
			e.Logger.Error("automod rule failed", "rule", r.Name(), "err", err, "guild", msg.GuildID, "user", msg.AuthorID, "message", msg.ID)
			continue
		}
		if t == nil {
			continue
		}
		ruleTriggerCount.WithLabelValues(r.Name(), string(t.Punishment.Action)).Inc()
		e.Logger.Info("automod rule triggered", "rule", r.Name(), "punishment", t.Punishment.String(), "guild", msg.GuildID, "user", msg.AuthorID)
		triggers = append(triggers, *t)
	}
	return triggers
}

func (e *Engine) runRule(ctx context.Context, r Rule, msg *Message) (t *Trigger, err error) {
	// similar to an HTTP server, recover panics so one rule can't take the others down
	defer func() {
		if rec := recover(); rec != nil {
			t = nil
			err = fmt.Errorf("rule panicked: %v", rec)
		}
	}()
	return r.Check(ctx, msg)
}

// ResetMember clears resettable state for a member across all rules.
func (e *Engine) ResetMember(guildID, userID string) {
	for _, r := range e.Rules() {
		if rr, ok := r.(Resetter); ok {
			rr.Reset(guildID, userID)
		}
	}
}

func (e *Engine) Sweep(cutoff time.Time) int {
	removed := 0
	for _, r := range e.Rules() {
		removed += r.Sweep(cutoff)
	}
	return removed
}
