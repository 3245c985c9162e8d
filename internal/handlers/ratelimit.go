package handlers

import (
	"sync"
	"time"
)

type rateEntry struct {
	count       int
	windowStart time.Time
}

// simpleRateLimiter is a fixed-window in-memory limiter keyed by client. It
// backs the login endpoint, ahead of the per-client lockout in the auth service.
type simpleRateLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	entries map[string]rateEntry
}

func newSimpleRateLimiter(limit int, window time.Duration, clock func() time.Time) *simpleRateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	if clock == nil {
		clock = time.Now
	}
	return &simpleRateLimiter{
		limit:   limit,
		window:  window,
		clock:   clock,
		entries: map[string]rateEntry{},
	}
}

// Allow reports whether the key may proceed within the current window.
func (l *simpleRateLimiter) Allow(key string) bool {
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneExpiredLocked(now)

	entry, ok := l.entries[key]
	if !ok || now.Sub(entry.windowStart) >= l.window {
		l.entries[key] = rateEntry{count: 1, windowStart: now}
		return true
	}
	if entry.count >= l.limit {
		return false
	}
	entry.count++
	l.entries[key] = entry
	return true
}

func (l *simpleRateLimiter) pruneExpiredLocked(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.windowStart) >= l.window {
			delete(l.entries, key)
		}
	}
}
