package core

import (
	"sync"
	"time"
)

// rateLimiter counts admission attempts per identity over a trailing window.
// Every attempt is recorded, allowed or not, so a client hammering the server
// stays limited until it backs off.
type rateLimiter struct {
	limit  int
	window time.Duration

	mu     sync.Mutex
	stamps map[string][]time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		stamps: make(map[string][]time.Time),
	}
}

// allow records an attempt at now and reports whether the identity is still
// within limit attempts for the trailing window.
func (r *rateLimiter) allow(identity string, now time.Time) bool {
	if r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-r.window)
	recent := r.stamps[identity][:0]
	for _, ts := range r.stamps[identity] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	recent = append(recent, now)
	r.stamps[identity] = recent

	return len(recent) <= r.limit
}
