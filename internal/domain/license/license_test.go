package license

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int {
	return &v
}

func newTestLicense(t *testing.T, validityDays *int, maxDevices int) *License {
	t.Helper()
	l, err := NewLicense("lic_test", "code-abc", "salt", "hash", "pro", validityDays, maxDevices, testNow)
	require.NoError(t, err)
	return l
}

// =============================================================================
// Constructor Tests
// =============================================================================

func TestNewLicense_ComputesExpiry(t *testing.T) {
	l := newTestLicense(t, intPtr(30), 3)

	require.NotNil(t, l.ExpiresAt())
	assert.Equal(t, testNow.Add(30*24*time.Hour), *l.ExpiresAt())
	assert.Equal(t, "2025-03-31", l.ExpiryDate())
	assert.True(t, l.IsActive())
	assert.Equal(t, 0, l.DeviceCount())
	assert.Equal(t, 0, l.FailedAttempts())
}

func TestNewLicense_Perpetual(t *testing.T) {
	l := newTestLicense(t, nil, 0)

	assert.Nil(t, l.ExpiresAt())
	assert.Equal(t, PerpetualExpiry, l.ExpiryDate())
	assert.Equal(t, DefaultMaxDevices, l.MaxDevices())
	assert.False(t, l.IsExpired(testNow.Add(100*365*24*time.Hour)))
}

func TestNewLicense_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		planID  string
		days    *int
		wantErr error
	}{
		{"empty code", "", "pro", nil, ErrEmptyCode},
		{"blank plan", "c", "  ", nil, ErrEmptyPlanID},
		{"zero validity", "c", "pro", intPtr(0), ErrInvalidValidity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLicense("lic_x", tt.code, "s", "h", tt.planID, tt.days, 3, testNow)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// =============================================================================
// Lockout Tests
// =============================================================================

func TestLockout_TripsAfterThreshold(t *testing.T) {
	l := newTestLicense(t, nil, 3)
	policy := DefaultLockoutPolicy()

	for i := 0; i < 4; i++ {
		l.RecordFailure(testNow)
	}
	assert.False(t, l.IsLocked(policy, testNow))

	l.RecordFailure(testNow)
	assert.True(t, l.IsLocked(policy, testNow.Add(time.Minute)))
	assert.False(t, l.LockoutElapsed(policy, testNow.Add(time.Minute)))
}

func TestLockout_ElapsesAfterDuration(t *testing.T) {
	l := newTestLicense(t, nil, 3)
	policy := DefaultLockoutPolicy()
	for i := 0; i < 5; i++ {
		l.RecordFailure(testNow)
	}

	later := testNow.Add(policy.Duration)
	assert.False(t, l.IsLocked(policy, later))
	assert.True(t, l.LockoutElapsed(policy, later))

	l.ClearLockout(later)
	assert.Equal(t, 0, l.FailedAttempts())
	assert.Equal(t, later, *l.LastVerifiedAt())
}

func TestRecordSuccess_ResetsCounter(t *testing.T) {
	l := newTestLicense(t, nil, 3)
	l.RecordFailure(testNow)
	l.RecordFailure(testNow)

	l.RecordSuccess(testNow.Add(time.Second))

	assert.Equal(t, 0, l.FailedAttempts())
	assert.Equal(t, testNow.Add(time.Second), *l.LastVerifiedAt())
}

// =============================================================================
// Device Binding Tests
// =============================================================================

func TestBindDevice_BoundedAndIdempotent(t *testing.T) {
	l := newTestLicense(t, nil, 2)

	changed, err := l.BindDevice("d1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = l.BindDevice("d1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, l.DeviceCount())

	_, err = l.BindDevice("d2")
	require.NoError(t, err)

	_, err = l.BindDevice("d3")
	assert.ErrorIs(t, err, ErrDeviceLimitExceeded)
	assert.Equal(t, []string{"d1", "d2"}, l.Devices())
}

func TestBindDevice_EmptyID(t *testing.T) {
	l := newTestLicense(t, nil, 2)

	_, err := l.BindDevice("")
	assert.ErrorIs(t, err, ErrEmptyDeviceID)
}

func TestDevices_ReturnsCopy(t *testing.T) {
	l := newTestLicense(t, nil, 2)
	_, _ = l.BindDevice("d1")

	devices := l.Devices()
	devices[0] = "tampered"

	assert.True(t, l.HasDevice("d1"))
}

// =============================================================================
// Revoke / Repair Tests
// =============================================================================

func TestRevoke_IsTerminal(t *testing.T) {
	l := newTestLicense(t, nil, 3)

	assert.True(t, l.Revoke(testNow))
	assert.False(t, l.IsActive())
	assert.False(t, l.Revoke(testNow))
}

func TestRepairHash(t *testing.T) {
	l := ReconstructLicense(ReconstructParams{ID: 1, SID: "lic_x", Code: "c", PlanID: "pro", IsActive: true})
	assert.True(t, l.NeedsHashRepair())
	assert.Equal(t, DefaultMaxDevices, l.MaxDevices())

	require.Error(t, l.RepairHash("s", "", testNow))
	require.NoError(t, l.RepairHash("s2", "h2", testNow))

	assert.False(t, l.NeedsHashRepair())
	assert.Equal(t, "s2", l.Salt())
	assert.Equal(t, "h2", l.Hash())
}

func TestFailureReason_CountsTowardLockout(t *testing.T) {
	assert.True(t, ReasonExpired.CountsTowardLockout())
	assert.True(t, ReasonHashMismatch.CountsTowardLockout())
	assert.False(t, ReasonLocked.CountsTowardLockout())
	assert.False(t, ReasonDeviceLimitExceeded.CountsTowardLockout())
	assert.False(t, ReasonNotFound.CountsTowardLockout())
	assert.NotEmpty(t, ReasonRevoked.Message())
}
