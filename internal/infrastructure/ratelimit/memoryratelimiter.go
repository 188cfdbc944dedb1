package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleLimiterTTL = 10 * time.Minute

// MemoryRateLimiter is the single-instance fallback used when Redis is
// disabled. Each key gets a token bucket refilled at MaxRequests per Window
// with a burst of MaxRequests.
type MemoryRateLimiter struct {
	mu        sync.Mutex
	config    Config
	limiters  map[string]*entry
	lastSweep time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryRateLimiter(config Config) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		config:    config,
		limiters:  make(map[string]*entry),
		lastSweep: time.Now(),
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	e, ok := l.limiters[key]
	if !ok {
		every := l.config.Window / time.Duration(max(l.config.MaxRequests, 1))
		e = &entry{limiter: rate.NewLimiter(rate.Every(every), l.config.MaxRequests)}
		l.limiters[key] = e
	}
	e.lastSeen = now

	r := e.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}
	return Decision{Allowed: true, Remaining: int(e.limiter.TokensAt(now))}, nil
}

func (l *MemoryRateLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.limiters, key)
	l.mu.Unlock()
	return nil
}

func (l *MemoryRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleLimiterTTL {
		return
	}
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) > idleLimiterTTL {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}
