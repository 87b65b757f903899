package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key: a client address for inbound
// requests, a dependency name for outbound calls.
type Limiter struct {
	limiters map[string]*entry
	mu       sync.RWMutex
	defaults RateLimitConfig
}

type entry struct {
	limiter *rate.Limiter
	// unix nanos, updated without the map lock
	lastSeen atomic.Int64
	// set by SetLimit; Prune keeps pinned entries
	pinned bool
}

func newEntry(lim *rate.Limiter, now time.Time, pinned bool) *entry {
	e := &entry{limiter: lim, pinned: pinned}
	e.lastSeen.Store(now.UnixNano())
	return e
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 5,
		BurstSize:         10,
	}
}

func NewLimiter(config RateLimitConfig) *Limiter {
	return &Limiter{
		limiters: make(map[string]*entry),
		defaults: config,
	}
}

func NewLimiterWithDefaults() *Limiter {
	return NewLimiter(DefaultConfig())
}

func (l *Limiter) GetLimiter(key string) *rate.Limiter {
	now := time.Now()

	l.mu.RLock()
	e, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		e.touch(now)
		return e.limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e, exists = l.limiters[key]; exists {
		e.touch(now)
		return e.limiter
	}

	e = newEntry(rate.NewLimiter(rate.Limit(l.defaults.RequestsPerSecond), l.defaults.BurstSize), now, false)
	l.limiters[key] = e
	return e.limiter
}

func (e *entry) touch(now time.Time) {
	e.lastSeen.Store(now.UnixNano())
}

func (e *entry) idleSince(cutoff time.Time) bool {
	return e.lastSeen.Load() < cutoff.UnixNano()
}

// SetLimit installs a fixed bucket for key. Overrides survive Prune.
func (l *Limiter) SetLimit(key string, rps float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limiters[key] = newEntry(rate.NewLimiter(rate.Limit(rps), burst), time.Now(), true)
}

// Allow reports whether key may proceed now, spending a token if so.
func (l *Limiter) Allow(key string) bool {
	return l.GetLimiter(key).Allow()
}

// Wait blocks until key may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.GetLimiter(key).Wait(ctx)
}

// Prune forgets keys unused for longer than idle and returns how many
// were removed. Keys set through SetLimit are never pruned.
func (l *Limiter) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.limiters {
		if !e.pinned && e.idleSince(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.limiters)
}
