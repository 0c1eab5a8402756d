package automod

import (
	"sync"
	"time"
)

type memberEntry[T any] struct {
	state    T
	lastSeen time.Time
}

// MemberStore holds per guild-member rule state. Every read-modify-write goes through
// Modify, which holds the store lock for the duration of the callback.
type MemberStore[T any] struct {
	mu      sync.Mutex
	entries map[string]*memberEntry[T]
}

func NewMemberStore[T any]() *MemberStore[T] {
	return &MemberStore[T]{
		entries: make(map[string]*memberEntry[T]),
	}
}

func (s *MemberStore[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	return e.state, true
}

func (s *MemberStore[T]) Set(key string, state T, seen time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &memberEntry[T]{state: state, lastSeen: seen}
}

func (s *MemberStore[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Modify runs fn on the state for key, creating a zero state when absent.
// found tells fn whether the state existed before. seen becomes the entry's eviction timestamp.
func (s *MemberStore[T]) Modify(key string, seen time.Time, fn func(state *T, found bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[key]
	if !found {
		e = &memberEntry[T]{}
		s.entries[key] = e
	}
	fn(&e.state, found)
	e.lastSeen = seen
}

// EvictOlderThan drops entries last seen before cutoff and returns how many were removed.
func (s *MemberStore[T]) EvictOlderThan(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *MemberStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
