package throttle

import (
	"sync"
	"time"
)

// window counts hits for one key until it expires.
type window struct {
	hits      int
	expiresAt time.Time
}

// Limiter allows at most limit hits per key within a period.
// Expired windows are dropped lazily on access or via Purge.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	windows map[string]window
}

// purgeThreshold bounds how many keys accumulate before Allow sweeps
// expired windows.
const purgeThreshold = 1024

// now is a small indirection to allow test stubbing.
var now = time.Now

// NewLimiter builds a limiter. A non-positive limit disables throttling.
func NewLimiter(limit int, period time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		period:  period,
		windows: make(map[string]window),
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := now()
	if len(l.windows) >= purgeThreshold {
		l.purgeLocked(ts)
	}
	w, ok := l.windows[key]
	if !ok || !ts.Before(w.expiresAt) {
		w = window{expiresAt: ts.Add(l.period)}
	}
	if w.hits >= l.limit {
		l.windows[key] = w
		return false
	}
	w.hits++
	l.windows[key] = w
	return true
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Purge drops every expired window.
func (l *Limiter) Purge() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.purgeLocked(now())
}

func (l *Limiter) purgeLocked(ts time.Time) {
	for k, w := range l.windows {
		if !ts.Before(w.expiresAt) {
			delete(l.windows, k)
		}
	}
}

// Len returns the number of tracked keys, expired or not.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
