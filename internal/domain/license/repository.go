package license

import (
	"context"
	"time"
)

// Repository is the License Store.
// Lookups return (nil, nil) when no license matches.
type Repository interface {
	Create(ctx context.Context, l *License) error
	// Update persists the mutable state: hash material, active flag,
	// devices, counters and timestamps. code and expiresAt are never written.
	Update(ctx context.Context, l *License) error
	GetByCode(ctx context.Context, code string) (*License, error)
	// GetByCodeForUpdate must be called inside a transaction; it holds a
	// row lock until the transaction ends.
	GetByCodeForUpdate(ctx context.Context, code string) (*License, error)
	GetBySID(ctx context.Context, sid string) (*License, error)
	// ListAfter pages through licenses ordered by primary key.
	ListAfter(ctx context.Context, afterID uint, limit int) ([]*License, error)
	// ListMissingHash returns licenses whose hash is empty.
	ListMissingHash(ctx context.Context, limit int) ([]*License, error)
}

// CodeHasher derives and checks the verification hash of a code. The
// master secret is owned by the implementation.
type CodeHasher interface {
	NewSalt() (string, error)
	Hash(code, salt string) (string, error)
	Verify(code, salt, hash string) (bool, error)
}

// CodeGenerator produces fresh license codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// VerifiedGrant is the cached outcome of a successful verification.
type VerifiedGrant struct {
	LicenseID   string     `json:"license_id"`
	PlanID      string     `json:"plan_id"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	DeviceCount int        `json:"device_count"`
}

// VerificationCache is a TTL-bound side cache of granted (code, device)
// pairs. It is never the source of truth: every state change on a license
// must Invalidate its code.
//
// Invalidate advances the code's generation. A grant read from the store
// is only cached when the generation observed before that read is still
// current, so a Put that loses a race with a revoke is dropped.
type VerificationCache interface {
	Get(ctx context.Context, code, deviceID string) (*VerifiedGrant, error)
	Generation(ctx context.Context, code string) (int64, error)
	// Put stores grant unless code was invalidated after generation gen.
	Put(ctx context.Context, code, deviceID string, gen int64, grant *VerifiedGrant) error
	Invalidate(ctx context.Context, code string) error
}
