package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count       int
	windowStart time.Time
}

// MemoryLimiter is an in-process fixed-window counter keyed by identity
// hash. Check-and-increment is atomic under the mutex, so concurrent
// submissions from the same identity never under-count. The table lives for
// the process lifetime; a background sweep evicts entries whose window has
// elapsed so the map stays bounded.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	window  time.Duration
	max     int
	now     func() time.Time
}

// NewMemoryLimiter creates a limiter allowing max submissions per window
// per identity.
func NewMemoryLimiter(window time.Duration, max int) *MemoryLimiter {
	l := &MemoryLimiter{
		entries: make(map[string]*entry),
		window:  window,
		max:     max,
		now:     time.Now,
	}
	go l.sweep()
	return l
}

// Allow records the attempt and reports whether it is within the limit.
// An absent or expired entry resets the window; otherwise the count is
// incremented even when the attempt is rejected.
func (l *MemoryLimiter) Allow(_ context.Context, identity string) (bool, error) {
	if identity == "" {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[identity]
	if !ok || now.Sub(e.windowStart) > l.window {
		l.entries[identity] = &entry{count: 1, windowStart: now}
		return true, nil
	}

	e.count++
	return e.count <= l.max, nil
}

// Count returns the current window count for an identity. Used by tests and
// operational inspection.
func (l *MemoryLimiter) Count(identity string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[identity]
	if !ok {
		return 0
	}
	return e.count
}

func (l *MemoryLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		cutoff := l.now().Add(-l.window)
		for identity, e := range l.entries {
			if e.windowStart.Before(cutoff) {
				delete(l.entries, identity)
			}
		}
		l.mu.Unlock()
	}
}
