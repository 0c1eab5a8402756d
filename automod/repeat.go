package automod

import (
	"context"
	"fmt"
	"strings"
	"time"

	"automod-bot/model"
)

// IdentifierStrategy selects how a repeat rule decides two messages are the same.
type IdentifierStrategy int

const (
	// ContentRepeat matches equal lowercased text. Messages without text never match.
	ContentRepeat IdentifierStrategy = iota
	// EmbedRepeat matches messages sharing at least one embed URL or attachment digest.
	EmbedRepeat
	// CrossChannelRepeat matches the same text or media posted in a different channel than last time.
	CrossChannelRepeat
)

func (s IdentifierStrategy) String() string {
	switch s {
	case ContentRepeat:
		return "content_repeat"
	case EmbedRepeat:
		return "embed_repeat"
	case CrossChannelRepeat:
		return "cross_channel_repeat"
	default:
		return fmt.Sprintf("IdentifierStrategy(%d)", int(s))
	}
}

func ParseIdentifierStrategy(s string) (IdentifierStrategy, error) {
	switch s {
	case "content_repeat":
		return ContentRepeat, nil
	case "embed_repeat":
		return EmbedRepeat, nil
	case "cross_channel_repeat":
		return CrossChannelRepeat, nil
	}
	return 0, fmt.Errorf("unknown repeat strategy %q", s)
}

func (s IdentifierStrategy) reason() string {
	switch s {
	case EmbedRepeat:
		return "Sending the same attachments or embeds repeatedly"
	case CrossChannelRepeat:
		return "Posting the same message across multiple channels"
	default:
		return "Sending the same message repeatedly"
	}
}

func (s IdentifierStrategy) needsSignatures() bool {
	return s == EmbedRepeat || s == CrossChannelRepeat
}

// Identifier is the signature of a message. Which fields are filled depends on the strategy.
type Identifier struct {
	ChannelID  string
	Content    string
	Signatures SignatureSet
}

// RepeatState is the current run of matching messages of one member.
// Repeats is always len(PreviousMessages)-1 while the run is non-empty.
type RepeatState struct {
	PreviousMessages []*Message
	LastIdentifier   Identifier
	Repeats          int
}

// RepeatRule triggers once a member's run of matching messages reaches MaxRepeats messages.
type RepeatRule struct {
	name       string
	strategy   IdentifierStrategy
	maxRepeats int
	punishment model.Punishment
	hasher     *Hasher
	state      *MemberStore[RepeatState]
	now        func() time.Time
}

var _ Rule = (*RepeatRule)(nil)
var _ Resetter = (*RepeatRule)(nil)

func NewRepeatRule(name string, strategy IdentifierStrategy, maxRepeats int, punishment model.Punishment, hasher *Hasher) (*RepeatRule, error) {
	if maxRepeats < 2 {
		return nil, fmt.Errorf("rule %s: max_repeats must be at least 2, got %d", name, maxRepeats)
	}
	switch strategy {
	case ContentRepeat, EmbedRepeat, CrossChannelRepeat:
	default:
		return nil, fmt.Errorf("rule %s: unknown strategy %s", name, strategy)
	}
	if strategy.needsSignatures() && hasher == nil {
		return nil, fmt.Errorf("rule %s: %s needs an attachment hasher", name, strategy)
	}
	return &RepeatRule{
		name:       name,
		strategy:   strategy,
		maxRepeats: maxRepeats,
		punishment: punishment,
		hasher:     hasher,
		state:      NewMemberStore[RepeatState](),
		now:        time.Now,
	}, nil
}

func (r *RepeatRule) Name() string {
	return r.name
}

func (r *RepeatRule) identifier(ctx context.Context, msg *Message) Identifier {
	switch r.strategy {
	case EmbedRepeat:
		return Identifier{Signatures: r.hasher.Signatures(ctx, msg)}
	case CrossChannelRepeat:
		return Identifier{
			ChannelID:  msg.ChannelID,
			Content:    strings.ToLower(msg.Content),
			Signatures: r.hasher.Signatures(ctx, msg),
		}
	default:
		return Identifier{Content: strings.ToLower(msg.Content)}
	}
}

func (r *RepeatRule) matches(last, next Identifier) bool {
	switch r.strategy {
	case EmbedRepeat:
		return len(next.Signatures) > 0 && next.Signatures.Intersects(last.Signatures)
	case CrossChannelRepeat:
		if next.ChannelID == last.ChannelID {
			return false
		}
		return next.Content == last.Content || next.Signatures.Intersects(last.Signatures)
	default:
		return next.Content != "" && next.Content == last.Content
	}
}

// Check extends or restarts the member's run. The identifier is computed before the state
// lock is taken, since hashing may hit the network.
func (r *RepeatRule) Check(ctx context.Context, msg *Message) (*Trigger, error) {
	id := r.identifier(ctx, msg)
	seen := msg.CreatedAt
	if seen.IsZero() {
		seen = r.now()
	}

	var causedBy []*Message
	r.state.Modify(msg.MemberKey(), seen, func(st *RepeatState, found bool) {
		if !found || len(st.PreviousMessages) == 0 || !r.matches(st.LastIdentifier, id) {
			*st = RepeatState{
				PreviousMessages: []*Message{msg},
				LastIdentifier:   id,
			}
			return
		}
		st.PreviousMessages = append(st.PreviousMessages, msg)
		st.LastIdentifier = id
		st.Repeats++
		if len(st.PreviousMessages) >= r.maxRepeats {
			causedBy = make([]*Message, len(st.PreviousMessages))
			copy(causedBy, st.PreviousMessages)
		}
	})

	if causedBy == nil {
		return nil, nil
	}
	return &Trigger{
		Rule:       r.name,
		Punishment: r.punishment,
		Reason:     r.strategy.reason(),
		CausedBy:   causedBy,
	}, nil
}

// Reset forgets the member's current run.
func (r *RepeatRule) Reset(guildID, userID string) {
	r.state.Delete(memberKey(guildID, userID))
}

func (r *RepeatRule) State(guildID, userID string) (RepeatState, bool) {
	return r.state.Get(memberKey(guildID, userID))
}

func (r *RepeatRule) Sweep(cutoff time.Time) int {
	return r.state.EvictOlderThan(cutoff)
}

func (r *RepeatRule) Tracked() int {
	return r.state.Len()
}
