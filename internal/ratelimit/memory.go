package ratelimit

import (
	"context"
	"sync"
	"time"
)

// entry is one key's counter in the current window
type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps counters in process memory. Counters are not shared between
// instances and vanish on restart; use RedisLimiter when limits must hold cluster-wide.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time

	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
	done            chan struct{}
}

// Option configures a MemoryLimiter
type Option func(*MemoryLimiter)

// WithClock replaces the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(l *MemoryLimiter) {
		l.now = now
	}
}

// WithCleanup sweeps expired windows every interval in a background goroutine.
// Call Stop on shutdown.
func WithCleanup(interval time.Duration) Option {
	return func(l *MemoryLimiter) {
		l.cleanupInterval = interval
	}
}

// NewMemoryLimiter creates an empty in-memory limiter
func NewMemoryLimiter(opts ...Option) *MemoryLimiter {
	l := &MemoryLimiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.cleanupInterval > 0 {
		l.stop = make(chan struct{})
		l.done = make(chan struct{})
		go l.cleanup()
	}
	return l
}

// Stop terminates the cleanup goroutine, if any, and waits for it to exit
func (l *MemoryLimiter) Stop() {
	if l.stop == nil {
		return
	}
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

func (l *MemoryLimiter) cleanup() {
	defer close(l.done)
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Sweep drops every key whose window has elapsed and returns how many were removed
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, e := range l.entries {
		if !now.Before(e.resetAt) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

var _ Limiter = (*MemoryLimiter)(nil)

// Check reports whether one more action fits in the key's current window. It never mutates state.
func (l *MemoryLimiter) Check(_ context.Context, key string, cfg Config) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetAt) {
		return Result{Allowed: true, Remaining: cfg.Max - 1}, nil
	}

	if e.count >= cfg.Max {
		return Result{
			Allowed:           false,
			RetryAfterSeconds: retryAfterSeconds(e.resetAt.Sub(now)),
		}, nil
	}

	return Result{Allowed: true, Remaining: cfg.Max - e.count - 1}, nil
}

// Increment records one consumed action, starting a new window when the old one has elapsed
func (l *MemoryLimiter) Increment(_ context.Context, key string, cfg Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetAt) {
		l.entries[key] = &entry{count: 1, resetAt: now.Add(cfg.Window)}
		return nil
	}

	e.count++
	return nil
}

// Len returns the number of tracked keys
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
