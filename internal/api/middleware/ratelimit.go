package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limit allows Requests per Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// String renders the limit as "requests per window", e.g. "5 per 1m0s".
func (l Limit) String() string {
	return fmt.Sprintf("%d per %s", l.Requests, l.Window)
}

// RateLimiter is an in-memory sliding-window limiter enforcing one or more
// limits per key. A request is recorded only when every limit allows it.
type RateLimiter struct {
	requests  map[string][]time.Time
	mutex     sync.Mutex
	limits    []Limit
	maxWindow time.Duration
	now       func() time.Time
}

// NewRateLimiter creates a limiter enforcing all of limits. Non-positive
// limits are ignored.
func NewRateLimiter(limits ...Limit) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
	for _, l := range limits {
		if l.Requests <= 0 || l.Window <= 0 {
			continue
		}
		rl.limits = append(rl.limits, l)
		if l.Window > rl.maxWindow {
			rl.maxWindow = l.Window
		}
	}
	return rl
}

// Limits returns the enforced limits.
func (rl *RateLimiter) Limits() []Limit {
	return append([]Limit(nil), rl.limits...)
}

// Allow checks if a request for key is allowed. When it is not, the returned
// Limit is the first one that was exceeded.
func (rl *RateLimiter) Allow(key string) (bool, Limit) {
	if len(rl.limits) == 0 {
		return true, Limit{}
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	history := prune(rl.requests[key], now.Add(-rl.maxWindow))

	for _, l := range rl.limits {
		if countSince(history, now.Add(-l.Window)) >= l.Requests {
			rl.requests[key] = history
			return false, l
		}
	}

	rl.requests[key] = append(history, now)
	return true, Limit{}
}

// Cleanup removes keys with no requests inside the longest window.
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := rl.now().Add(-rl.maxWindow)
	for key, history := range rl.requests {
		if filtered := prune(history, cutoff); len(filtered) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = filtered
		}
	}
}

// Tracked returns the number of keys currently held.
func (rl *RateLimiter) Tracked() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.requests)
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}

// prune drops timestamps at or before cutoff. history is sorted ascending.
func prune(history []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(history) && !history[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return history
	}
	return append(history[:0:0], history[i:]...)
}

func countSince(history []time.Time, cutoff time.Time) int {
	n := 0
	for i := len(history) - 1; i >= 0 && history[i].After(cutoff); i-- {
		n++
	}
	return n
}
