// Package ratelimit provides a fixed-window request limiter keyed by caller identity.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	// Remaining is the number of further requests allowed in the current window.
	Remaining int
	// ResetAt is when the current window closes.
	ResetAt time.Time
}

// RetryAfter returns how long a rejected caller should wait, rounded up to a whole second.
// Postcondition: Returns 0 for allowed decisions.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.Allowed || !d.ResetAt.After(now) {
		return 0
	}
	wait := d.ResetAt.Sub(now)
	return (wait + time.Second - 1).Truncate(time.Second)
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter allows at most Limit requests per key in each Window.
// It is safe for concurrent use.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter.
//
// Precondition: limit >= 1 and win > 0.
func New(limit int, win time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		limit:   limit,
		window:  win,
		now:     time.Now,
		windows: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit returns the configured request count per window.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Allow records a request for key and reports whether it is within the limit.
// Rejected requests do not count against the window.
func (l *Limiter) Allow(key string) Decision {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.window)}
		l.windows[key] = w
	}
	if w.count >= l.limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: w.resetAt}
	}
	w.count++
	return Decision{Allowed: true, Remaining: l.limit - w.count, ResetAt: w.resetAt}
}

// Sweep drops expired windows and returns how many were removed.
func (l *Limiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for k, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
