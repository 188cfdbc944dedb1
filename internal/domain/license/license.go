package license

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DefaultMaxDevices applies when a license is created without an explicit bound.
const DefaultMaxDevices = 3

// License is the unit of entitlement handed to a customer as a code.
type License struct {
	id             uint
	sid            string
	code           string
	salt           string
	hash           string
	planID         string
	createdAt      time.Time
	expiresAt      *time.Time
	isActive       bool
	devices        []string
	maxDevices     int
	failedAttempts int
	lastVerifiedAt *time.Time
	updatedAt      time.Time
}

// NewLicense builds an active license with no bound devices.
// validityDays nil means the license never expires.
func NewLicense(sid, code, salt, hash, planID string, validityDays *int, maxDevices int, now time.Time) (*License, error) {
	if sid == "" {
		return nil, fmt.Errorf("license ID is required")
	}
	if code == "" {
		return nil, ErrEmptyCode
	}
	if strings.TrimSpace(planID) == "" {
		return nil, ErrEmptyPlanID
	}
	if validityDays != nil && *validityDays <= 0 {
		return nil, ErrInvalidValidity
	}
	if maxDevices <= 0 {
		maxDevices = DefaultMaxDevices
	}

	var expiresAt *time.Time
	if validityDays != nil {
		t := now.Add(time.Duration(*validityDays) * 24 * time.Hour)
		expiresAt = &t
	}

	return &License{
		sid:        sid,
		code:       code,
		salt:       salt,
		hash:       hash,
		planID:     planID,
		createdAt:  now,
		expiresAt:  expiresAt,
		isActive:   true,
		devices:    []string{},
		maxDevices: maxDevices,
		updatedAt:  now,
	}, nil
}

// IsLocked reports whether the lockout gate is closed at now.
func (l *License) IsLocked(policy LockoutPolicy, now time.Time) bool {
	if !policy.Tripped(l.failedAttempts) || l.lastVerifiedAt == nil {
		return false
	}
	return now.Before(l.lastVerifiedAt.Add(policy.Duration))
}

// LockoutElapsed reports whether the counter tripped the threshold but the
// lockout window has since passed.
func (l *License) LockoutElapsed(policy LockoutPolicy, now time.Time) bool {
	return policy.Tripped(l.failedAttempts) && !l.IsLocked(policy, now)
}

// ClearLockout resets the counter once the lockout window has passed.
func (l *License) ClearLockout(now time.Time) {
	l.failedAttempts = 0
	l.lastVerifiedAt = &now
	l.updatedAt = now
}

// IsExpired reports whether now is past expiresAt. Perpetual licenses never expire.
func (l *License) IsExpired(now time.Time) bool {
	return l.expiresAt != nil && now.After(*l.expiresAt)
}

// RecordFailure counts a credential failure and restarts the lockout window.
func (l *License) RecordFailure(now time.Time) {
	l.failedAttempts++
	l.lastVerifiedAt = &now
	l.updatedAt = now
}

// RecordSuccess clears the counter after a granted verification.
func (l *License) RecordSuccess(now time.Time) {
	l.failedAttempts = 0
	l.lastVerifiedAt = &now
	l.updatedAt = now
}

func (l *License) HasDevice(deviceID string) bool {
	return slices.Contains(l.devices, deviceID)
}

// BindDevice appends deviceID if it is not bound yet. It returns true when
// the device list changed. Existing bindings are never evicted.
func (l *License) BindDevice(deviceID string) (bool, error) {
	if deviceID == "" {
		return false, ErrEmptyDeviceID
	}
	if l.HasDevice(deviceID) {
		return false, nil
	}
	if len(l.devices) >= l.maxDevices {
		return false, ErrDeviceLimitExceeded
	}
	l.devices = append(l.devices, deviceID)
	return true, nil
}

// Revoke deactivates the license. Revocation is terminal, so a second call
// returns false.
func (l *License) Revoke(now time.Time) bool {
	if !l.isActive {
		return false
	}
	l.isActive = false
	l.updatedAt = now
	return true
}

// NeedsHashRepair reports the corruption state where the stored hash is missing.
func (l *License) NeedsHashRepair() bool {
	return l.hash == ""
}

// RepairHash replaces the stored verification material.
func (l *License) RepairHash(salt, hash string, now time.Time) error {
	if hash == "" {
		return fmt.Errorf("repaired hash must not be empty")
	}
	if salt != "" {
		l.salt = salt
	}
	l.hash = hash
	l.updatedAt = now
	return nil
}

// ExpiryDate formats expiresAt as a calendar date, or "perpetual".
func (l *License) ExpiryDate() string {
	return FormatExpiry(l.expiresAt)
}

// FormatExpiry renders an optional expiry as a calendar date or "perpetual".
func FormatExpiry(expiresAt *time.Time) string {
	if expiresAt == nil {
		return PerpetualExpiry
	}
	return expiresAt.UTC().Format(time.DateOnly)
}

func (l *License) ID() uint {
	return l.id
}

func (l *License) SID() string {
	return l.sid
}

func (l *License) Code() string {
	return l.code
}

func (l *License) Salt() string {
	return l.salt
}

func (l *License) Hash() string {
	return l.hash
}

func (l *License) PlanID() string {
	return l.planID
}

func (l *License) CreatedAt() time.Time {
	return l.createdAt
}

func (l *License) ExpiresAt() *time.Time {
	return l.expiresAt
}

func (l *License) IsActive() bool {
	return l.isActive
}

// Devices returns a copy of the bound device ids in binding order.
func (l *License) Devices() []string {
	return slices.Clone(l.devices)
}

func (l *License) DeviceCount() int {
	return len(l.devices)
}

func (l *License) MaxDevices() int {
	return l.maxDevices
}

func (l *License) FailedAttempts() int {
	return l.failedAttempts
}

func (l *License) LastVerifiedAt() *time.Time {
	return l.lastVerifiedAt
}

func (l *License) UpdatedAt() time.Time {
	return l.updatedAt
}

// SetID writes back the auto-generated primary key after insert.
func (l *License) SetID(id uint) {
	l.id = id
}

// ReconstructParams carries persisted state back into a License.
type ReconstructParams struct {
	ID             uint
	SID            string
	Code           string
	Salt           string
	Hash           string
	PlanID         string
	CreatedAt      time.Time
	ExpiresAt      *time.Time
	IsActive       bool
	Devices        []string
	MaxDevices     int
	FailedAttempts int
	LastVerifiedAt *time.Time
	UpdatedAt      time.Time
}

func ReconstructLicense(p ReconstructParams) *License {
	devices := p.Devices
	if devices == nil {
		devices = []string{}
	}
	maxDevices := p.MaxDevices
	if maxDevices <= 0 {
		maxDevices = DefaultMaxDevices
	}
	return &License{
		id:             p.ID,
		sid:            p.SID,
		code:           p.Code,
		salt:           p.Salt,
		hash:           p.Hash,
		planID:         p.PlanID,
		createdAt:      p.CreatedAt,
		expiresAt:      p.ExpiresAt,
		isActive:       p.IsActive,
		devices:        devices,
		maxDevices:     maxDevices,
		failedAttempts: p.FailedAttempts,
		lastVerifiedAt: p.LastVerifiedAt,
		updatedAt:      p.UpdatedAt,
	}
}
