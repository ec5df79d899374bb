package debounce

import (
	"sync"
	"time"
)

// Throttle lets at most one call through per interval. Calls arriving
// inside the interval are dropped, not queued.
type Throttle struct {
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewThrottle creates a throttle with the given interval.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval, now: time.Now}
}

// allow reports whether a call may proceed now, and if so starts a new
// interval.
func (t *Throttle) allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}

// Do runs fn unless a call already ran within the interval, and reports
// whether it ran.
func (t *Throttle) Do(fn func()) bool {
	if !t.allow() {
		return false
	}
	fn()
	return true
}
