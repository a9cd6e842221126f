// Package guard holds in-process, best-effort abuse mitigation. State is
// ephemeral and lost on restart; nothing here is correctness-critical.
package guard

import (
	"sync"
	"time"
)

// FixedWindowLimiter counts events per key inside a fixed time window. Each
// key tracks {count, resetAt}; the counter resets when the window expires.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// NewFixedWindowLimiter creates a limiter allowing limit events per window.
func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
	}
}

// Allow records one event for the key and reports whether it is within the
// limit. When blocked, retryAfter is the time until the window resets.
func (l *FixedWindowLimiter) Allow(key string) (allowed bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetAt) {
		l.entries[key] = &windowEntry{count: 1, resetAt: now.Add(l.window)}
		return true, 0
	}

	if entry.count >= l.limit {
		return false, time.Until(entry.resetAt)
	}

	entry.count++
	return true, 0
}

// Prune drops expired entries. Called opportunistically; the limiter works
// correctly without it, this just bounds memory on long-running processes.
func (l *FixedWindowLimiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, entry := range l.entries {
		if now.After(entry.resetAt) {
			delete(l.entries, key)
		}
	}
}
