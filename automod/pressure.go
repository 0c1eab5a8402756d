package automod

import (
	"context"
	"fmt"
	"time"

	"automod-bot/model"
)

// PressureWeights are the per-feature pressure costs. Decay is in pressure points per second.
type PressureWeights struct {
	Base    float64
	Embed   float64
	Length  float64
	Line    float64
	Mention float64
	Repeat  float64
	Decay   float64
}

func DefaultPressureWeights() PressureWeights {
	return PressureWeights{
		Base:    10,
		Embed:   8.3,
		Length:  0.0125,
		Line:    0.714,
		Mention: 2.5,
		Repeat:  10,
		Decay:   2,
	}
}

// PressureState is the stored pressure of one guild member.
type PressureState struct {
	Pressure      float64
	LastMessageAt time.Time
	LastContent   string
}

type pressureBreakdown struct {
	stored   float64
	decayed  float64
	base     float64
	media    float64
	length   float64
	caps     float64
	lines    float64
	mentions float64
	repeat   float64
	total    float64
}

func (b pressureBreakdown) String() string {
	return fmt.Sprintf("pressure %.2f -> %.2f (stored %.2f before decay): base %.2f, media %.2f, length %.2f, caps %.2f, lines %.2f, mentions %.2f, repeat %.2f",
		b.decayed, b.total, b.stored, b.base, b.media, b.length, b.caps, b.lines, b.mentions, b.repeat)
}

// PressureRule scores every message a member sends and triggers once the decayed running
// total reaches the limit.
type PressureRule struct {
	name       string
	weights    PressureWeights
	limit      float64
	punishment model.Punishment
	state      *MemberStore[PressureState]
	now        func() time.Time
}

var _ Rule = (*PressureRule)(nil)

func NewPressureRule(name string, weights PressureWeights, limit float64, punishment model.Punishment) *PressureRule {
	return &PressureRule{
		name:       name,
		weights:    weights,
		limit:      limit,
		punishment: punishment,
		state:      NewMemberStore[PressureState](),
		now:        time.Now,
	}
}

func (r *PressureRule) Name() string {
	return r.name
}

func (r *PressureRule) Weights() PressureWeights {
	return r.weights
}

// decay applies the elapsed-time reduction. Time running backwards never adds pressure.
func (r *PressureRule) decay(pressure float64, last, now time.Time) float64 {
	elapsed := now.Sub(last).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return max(pressure-elapsed*r.weights.Decay, 0)
}

// Check updates the member's pressure; the state changes whether or not the rule triggers.
func (r *PressureRule) Check(ctx context.Context, msg *Message) (*Trigger, error) {
	now := msg.CreatedAt
	if now.IsZero() {
		now = r.now()
	}
	w := r.weights

	var b pressureBreakdown
	r.state.Modify(msg.MemberKey(), now, func(st *PressureState, found bool) {
		if found {
			b.stored = st.Pressure
			b.decayed = r.decay(st.Pressure, st.LastMessageAt, now)
		}
		b.base = w.Base
		b.media = w.Embed * float64(msg.MediaCount())
		b.length = w.Length * float64(msg.Length())
		// capitals ride on the length weight on top of the length term
		b.caps = w.Length * float64(msg.CapitalLetters())
		b.lines = w.Line * float64(msg.Newlines())
		b.mentions = w.Mention * float64(msg.Mentions())
		if found && msg.Content == st.LastContent {
			b.repeat = w.Repeat
		}
		b.total = b.decayed + b.base + b.media + b.length + b.caps + b.lines + b.mentions + b.repeat

		st.Pressure = b.total
		st.LastMessageAt = now
		st.LastContent = msg.Content
	})

	if b.total < r.limit {
		return nil, nil
	}
	return &Trigger{
		Rule:       r.name,
		Punishment: r.punishment,
		Reason:     fmt.Sprintf("Spam pressure limit %.2f reached, %s", r.limit, b),
		CausedBy:   []*Message{msg},
	}, nil
}

// PressureAt is the member's pressure as it would be at t with no new messages.
func (r *PressureRule) PressureAt(guildID, userID string, t time.Time) float64 {
	st, ok := r.state.Get(memberKey(guildID, userID))
	if !ok {
		return 0
	}
	return r.decay(st.Pressure, st.LastMessageAt, t)
}

func (r *PressureRule) State(guildID, userID string) (PressureState, bool) {
	return r.state.Get(memberKey(guildID, userID))
}

func (r *PressureRule) Sweep(cutoff time.Time) int {
	return r.state.EvictOlderThan(cutoff)
}

func (r *PressureRule) Tracked() int {
	return r.state.Len()
}
