package ratelimit

import (
	"context"
	"time"
)

// Config bounds requests per key within a rolling window.
type Config struct {
	Window      time.Duration
	MaxRequests int
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}
