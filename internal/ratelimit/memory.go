package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store implementation backed by a map with a
// mutex. Counters from past windows are dropped lazily on access and swept
// periodically by the janitor.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry

	cleanupEvery time.Duration
}

type windowEntry struct {
	start time.Time
	end   time.Time
	count int64
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCleanupEvery sets the janitor sweep interval. A non-positive value
// disables the janitor.
func WithCleanupEvery(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.cleanupEvery = d }
}

// NewMemoryStore creates an empty in-process counter store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:      make(map[string]*windowEntry),
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure MemoryStore implements Store interface
var _ Store = (*MemoryStore)(nil)

// Incr implements Store.
func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration, now time.Time) (int64, time.Time, error) {
	start := windowStart(now, window)

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || !ent.start.Equal(start) {
		ent = &windowEntry{start: start, end: start.Add(window)}
		s.entries[key] = ent
	}
	ent.count++
	return ent.count, ent.end, nil
}

// Cleanup removes counters whose window ended before now.
func (s *MemoryStore) Cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if !ent.end.After(now) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor starts a goroutine that sweeps expired counters periodically.
// Stop it by cancelling the context.
func (s *MemoryStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				s.Cleanup(now)
			}
		}
	}()
}

// size reports the number of live counters. Used by tests.
func (s *MemoryStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
