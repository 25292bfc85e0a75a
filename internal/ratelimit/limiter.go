package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter is a per-client sliding-window admission controller.
//
// Each client key owns an ordered window of admission timestamps. On every
// Admit call the window is pruned to the trailing interval, then the request
// is admitted only if fewer than the configured maximum admissions remain.
// This is a true sliding window — a burst followed by a pause longer than the
// window is fully re-admitted.
//
// All exported methods are safe for concurrent use. A background goroutine
// (Run) periodically evicts clients whose windows have gone fully stale so
// the key map does not grow without bound.
type Limiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	max     int
	window  time.Duration
	now     func() time.Time // injectable for deterministic tests
}

// New creates a Limiter admitting at most max requests per client within window.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string][]time.Time),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

// Admit records an admission attempt for clientKey and reports whether it is
// allowed. Denied attempts are not recorded, but the client's window is still
// pruned — pruning is a side effect of every call.
func (l *Limiter) Admit(clientKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.windows[clientKey][:0]
	for _, ts := range l.windows[clientKey] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.max {
		l.windows[clientKey] = kept
		return false
	}

	l.windows[clientKey] = append(kept, now)
	return true
}

// SetLimits replaces the admission limits. Existing windows are kept; the new
// limits apply from the next Admit call.
func (l *Limiter) SetLimits(max int, window time.Duration) {
	l.mu.Lock()
	l.max = max
	l.window = window
	l.mu.Unlock()
}

// Count returns the number of client windows currently tracked, including
// stale ones that have not yet been evicted.
func (l *Limiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Evict removes clients whose most recent admission is older than now minus
// the window. It returns the number of clients removed.
func (l *Limiter) Evict(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	removed := 0
	for key, win := range l.windows {
		if len(win) == 0 || !win[len(win)-1].After(cutoff) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Run starts the background eviction loop. It ticks at the window interval
// (minimum 1 second) so stale clients are dropped promptly. Run blocks until
// ctx is cancelled.
func (l *Limiter) Run(ctx context.Context) {
	l.mu.Lock()
	interval := l.window
	l.mu.Unlock()
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := l.Evict(now); n > 0 {
				slog.Debug("ratelimit: evicted stale clients", "count", n)
			}
		}
	}
}
