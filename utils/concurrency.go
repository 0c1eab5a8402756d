package utils

import (
	"sync"
	"time"
)

// PunishLock suppresses repeated punishments for the same key while a previous one
// is still fresh, e.g. when a burst of already-sent messages keeps triggering rules.
type PunishLock struct {
	Duration time.Duration

	mu    sync.Mutex
	locks map[string]time.Time
}

func NewPunishLock(d time.Duration) *PunishLock {
	return &PunishLock{Duration: d, locks: make(map[string]time.Time)}
}

// CheckAndSet checks if key is currently locked at now.
// If not locked, it sets a new lock and returns true.
// If locked, it returns false.
func (l *PunishLock) CheckAndSet(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.locks[key]; ok {
		if now.Sub(last) < l.Duration {
			return false // Locked
		}
	}

	l.locks[key] = now
	return true // Not locked, new lock set
}

// Cleanup drops expired locks and returns how many were removed.
func (l *PunishLock) Cleanup(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, t := range l.locks {
		if now.Sub(t) >= l.Duration {
			delete(l.locks, key)
			removed++
		}
	}
	return removed
}
