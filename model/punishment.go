package model

import (
	"fmt"
	"time"
)

// PunishmentAction is the kind of moderation action a rule asks for.
type PunishmentAction string

const (
	ActionNone    PunishmentAction = "none"
	ActionDelete  PunishmentAction = "delete"
	ActionWarn    PunishmentAction = "warn"
	ActionTimeout PunishmentAction = "timeout"
	ActionKick    PunishmentAction = "kick"
	ActionBan     PunishmentAction = "ban"
)

var actionSeverity = map[PunishmentAction]int{
	ActionNone:    0,
	ActionDelete:  1,
	ActionWarn:    2,
	ActionTimeout: 3,
	ActionKick:    4,
	ActionBan:     5,
}

// Punishment is what a triggered rule hands to the executor.
type Punishment struct {
	Action PunishmentAction `mapstructure:"action"`
	// Only used by timeout.
	Duration time.Duration `mapstructure:"duration"`
}

// Severity orders punishments so the executor can pick the harshest one.
// Unknown actions rank below none.
func (p Punishment) Severity() int {
	if s, ok := actionSeverity[p.Action]; ok {
		return s
	}
	return -1
}

func (p Punishment) Validate() error {
	if _, ok := actionSeverity[p.Action]; !ok {
		return fmt.Errorf("unknown punishment action %q", p.Action)
	}
	if p.Action == ActionTimeout && p.Duration <= 0 {
		return fmt.Errorf("timeout punishment needs a positive duration")
	}
	return nil
}

func (p Punishment) String() string {
	if p.Action == ActionTimeout {
		return fmt.Sprintf("%s (%s)", p.Action, p.Duration)
	}
	return string(p.Action)
}

// MostSevere returns the harshest punishment of the given ones, preferring the first on ties.
func MostSevere(punishments ...Punishment) Punishment {
	best := Punishment{Action: ActionNone}
	for _, p := range punishments {
		if p.Severity() > best.Severity() {
			best = p
		}
	}
	return best
}
