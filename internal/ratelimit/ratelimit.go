// Package ratelimit provides per-key admission control over a sliding window.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits at most limit calls per key within the trailing window.
// The window is exact (sliding), not a fixed-aligned bucket. A limit <= 0
// disables limiting and admits everything.
//
// Keys are never expired: the per-key slice is bounded by limit, but the key
// set itself grows with the number of distinct senders.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time

	now func() time.Time
}

func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether one more call for key is admitted right now.
// Timestamps older than the window are pruned before the decision; a
// rejected call is not recorded.
func (l *Limiter) Allow(key string) bool {
	if l.limit <= 0 {
		return true
	}

	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.limit {
		l.hits[key] = kept
		return false
	}

	l.hits[key] = append(kept, now)
	return true
}
