package license

import "time"

const (
	DefaultMaxFailedAttempts = 5
	DefaultLockoutDuration   = 600 * time.Second

	// PerpetualExpiry is rendered in place of a date for licenses without expiresAt.
	PerpetualExpiry = "perpetual"
)

// LockoutPolicy bounds consecutive credential failures.
type LockoutPolicy struct {
	MaxFailedAttempts int
	Duration          time.Duration
}

func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxFailedAttempts: DefaultMaxFailedAttempts,
		Duration:          DefaultLockoutDuration,
	}
}

// Tripped reports whether failedAttempts reached the threshold.
func (p LockoutPolicy) Tripped(failedAttempts int) bool {
	threshold := p.MaxFailedAttempts
	if threshold <= 0 {
		threshold = DefaultMaxFailedAttempts
	}
	return failedAttempts >= threshold
}
