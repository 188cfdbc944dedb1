package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensor/internal/domain/audit"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

func TestRevokeLicense(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()
	code := env.issue(t, "pro", intPtr(30))
	sid := env.load(t, code).SID()

	revoked, err := env.revoke.Execute(ctx, RevokeLicenseCommand{Code: code, Reason: "chargeback", ClientIP: "10.1.1.1"})
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.False(t, env.load(t, code).IsActive())

	again, err := env.revoke.Execute(ctx, RevokeLicenseCommand{Code: code})
	require.NoError(t, err)
	assert.False(t, again)
	assert.False(t, env.load(t, code).IsActive())

	entries, err := env.recorder.Query(ctx, sid, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, audit.ActionRevoke, entries[0].Action)
	assert.Equal(t, audit.StatusFailed, entries[0].Status)
	assert.Equal(t, "already revoked", entries[0].Details)
	assert.Equal(t, audit.StatusSuccess, entries[1].Status)
	assert.Equal(t, "chargeback", entries[1].Details)
}

func TestRevokeLicense_UnknownCode(t *testing.T) {
	env := newTestEnv(t, 3)

	revoked, err := env.revoke.Execute(context.Background(), RevokeLicenseCommand{Code: "missing"})
	require.NoError(t, err)
	assert.False(t, revoked)

	var count int64
	require.NoError(t, env.db.Table("audit_log").Where("action = ? AND status = ?", "revoke", "failed").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRenewLicense(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()
	code := env.issue(t, "pro_yearly", intPtr(365))
	oldSID := env.load(t, code).SID()

	uc := NewRenewLicenseUseCase(env.repo, env.generate, env.revoke, logger.NewNopLogger())
	rec, err := uc.Execute(ctx, RenewLicenseCommand{Code: code, ValidityDays: intPtr(30)})
	require.NoError(t, err)

	assert.NotEqual(t, code, rec.Code)
	assert.Equal(t, "pro_yearly", rec.PlanID)
	assert.Equal(t, "2025-03-31", rec.ExpiryDate)
	assert.False(t, env.load(t, code).IsActive())
	assert.True(t, env.load(t, rec.Code).IsActive())

	entries, err := env.recorder.Query(ctx, oldSID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "renewed as "+rec.LicenseID, entries[0].Details)
}

func TestRenewLicense_NotFound(t *testing.T) {
	env := newTestEnv(t, 3)
	uc := NewRenewLicenseUseCase(env.repo, env.generate, env.revoke, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), RenewLicenseCommand{Code: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
