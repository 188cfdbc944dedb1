package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/orris-inc/licensor/internal/application/auditlog"
	"github.com/orris-inc/licensor/internal/application/license/dto"
	"github.com/orris-inc/licensor/internal/domain/audit"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/infrastructure/metrics"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

const verifyResultGranted = "granted"

type VerifyLicenseCommand struct {
	Code     string
	DeviceID string
	ClientIP string
}

// VerifyLicenseUseCase is the License Validator. Every check after the
// lookup runs under a row lock so concurrent verifications of one license
// serialize, while different licenses proceed in parallel.
type VerifyLicenseUseCase struct {
	licenseRepo license.Repository
	txManager   TransactionRunner
	hasher      license.CodeHasher
	cache       license.VerificationCache
	audit       AuditAppender
	clock       biztime.Clock
	policy      license.LockoutPolicy
	metrics     *metrics.Metrics
	logger      logger.Interface
}

func NewVerifyLicenseUseCase(
	licenseRepo license.Repository,
	txManager TransactionRunner,
	hasher license.CodeHasher,
	audit AuditAppender,
	clock biztime.Clock,
	policy license.LockoutPolicy,
	m *metrics.Metrics,
	logger logger.Interface,
) *VerifyLicenseUseCase {
	return &VerifyLicenseUseCase{
		licenseRepo: licenseRepo,
		txManager:   txManager,
		hasher:      hasher,
		audit:       audit,
		clock:       clock,
		policy:      policy,
		metrics:     m,
		logger:      logger,
	}
}

// SetVerificationCache enables the side cache for repeat verifications of
// already bound devices.
func (uc *VerifyLicenseUseCase) SetVerificationCache(cache license.VerificationCache) {
	uc.cache = cache
}

// verifyOutcome is what the transaction decided, captured for the
// post-commit audit and cache steps.
type verifyOutcome struct {
	reason  license.FailureReason
	lic     *license.License
	bound   bool
	healed  bool
	changed bool
}

// Execute returns a denial as a VerifyResult, never as an error. Errors are
// infrastructure failures; the transaction is rolled back and no counter moves.
func (uc *VerifyLicenseUseCase) Execute(ctx context.Context, cmd VerifyLicenseCommand) (*dto.VerifyResult, error) {
	code := strings.TrimSpace(cmd.Code)
	deviceID := strings.TrimSpace(cmd.DeviceID)
	if code == "" {
		return nil, errors.NewValidationError(license.ErrEmptyCode.Error())
	}
	if deviceID == "" {
		return nil, errors.NewValidationError(license.ErrEmptyDeviceID.Error())
	}

	if result := uc.fromCache(ctx, code, deviceID, cmd.ClientIP); result != nil {
		return result, nil
	}
	gen, cacheable := uc.generation(ctx, code)

	now := uc.clock.Now()
	var out verifyOutcome
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		out = verifyOutcome{}
		return uc.evaluate(txCtx, code, deviceID, now, &out)
	})
	if err != nil {
		uc.logger.Errorw("license verification failed",
			"code", utils.MaskCode(code),
			"device_id", deviceID,
			"error", err,
		)
		return nil, fmt.Errorf("verify license: %w", err)
	}

	licenseID := ""
	if out.lic != nil {
		licenseID = out.lic.SID()
	}

	if out.reason != license.ReasonNone {
		uc.invalidate(ctx, code, out.lic != nil)
		uc.audit.Append(ctx, auditlog.Record{
			LicenseID: licenseID,
			Action:    audit.ActionVerify,
			Success:   false,
			ClientIP:  cmd.ClientIP,
			DeviceID:  deviceID,
			Details:   out.reason.String(),
		})
		uc.metrics.Verification(out.reason.String())
		uc.logger.Infow("license verification denied",
			"license_id", licenseID,
			"code", utils.MaskCode(code),
			"device_id", deviceID,
			"reason", out.reason,
		)
		return dto.Denied(out.reason), nil
	}

	info := dto.ToLicenseInfo(out.lic)
	uc.remember(ctx, code, deviceID, gen, cacheable, out)

	details := fmt.Sprintf("device_count=%d", info.DeviceCount)
	if out.bound {
		details = "device bound, " + details
	}
	if out.healed {
		details += ", hash repaired"
	}
	uc.audit.Append(ctx, auditlog.Record{
		LicenseID: licenseID,
		Action:    audit.ActionVerify,
		Success:   true,
		ClientIP:  cmd.ClientIP,
		DeviceID:  deviceID,
		Details:   details,
	})
	uc.metrics.Verification(verifyResultGranted)

	return dto.Granted(info), nil
}

// evaluate applies the ordered checks to the locked row. Denials set
// out.reason and return nil so their state changes commit.
func (uc *VerifyLicenseUseCase) evaluate(ctx context.Context, code, deviceID string, now time.Time, out *verifyOutcome) error {
	l, err := uc.licenseRepo.GetByCodeForUpdate(ctx, code)
	if err != nil {
		return err
	}
	if l == nil {
		out.reason = license.ReasonNotFound
		return nil
	}
	out.lic = l

	if !l.IsActive() {
		out.reason = license.ReasonRevoked
		return nil
	}

	if l.IsLocked(uc.policy, now) {
		out.reason = license.ReasonLocked
		return nil
	}
	if l.LockoutElapsed(uc.policy, now) {
		l.ClearLockout(now)
		out.changed = true
	}

	if l.IsExpired(now) {
		l.RecordFailure(now)
		out.reason = license.ReasonExpired
		return uc.licenseRepo.Update(ctx, l)
	}

	ok, err := uc.checkHash(l, code, now, out)
	if err != nil {
		return err
	}
	if !ok {
		l.RecordFailure(now)
		out.reason = license.ReasonHashMismatch
		return uc.licenseRepo.Update(ctx, l)
	}

	bound, err := l.BindDevice(deviceID)
	if stderrors.Is(err, license.ErrDeviceLimitExceeded) {
		out.reason = license.ReasonDeviceLimitExceeded
		if out.changed {
			return uc.licenseRepo.Update(ctx, l)
		}
		return nil
	}
	if err != nil {
		return err
	}
	out.bound = bound

	l.RecordSuccess(now)
	out.changed = true
	return uc.licenseRepo.Update(ctx, l)
}

// checkHash verifies the presented code. A missing hash is rebuilt from the
// stored code exactly once and verified again; any stored hash that does not
// match is a mismatch, never a repair.
func (uc *VerifyLicenseUseCase) checkHash(l *license.License, code string, now time.Time, out *verifyOutcome) (bool, error) {
	if l.NeedsHashRepair() {
		salt, err := uc.hasher.NewSalt()
		if err != nil {
			return false, err
		}
		hash, err := uc.hasher.Hash(l.Code(), salt)
		if err != nil {
			return false, err
		}
		if err := l.RepairHash(salt, hash, now); err != nil {
			return false, err
		}
		out.healed = true
		out.changed = true
		uc.logger.Warnw("rebuilt missing license hash", "license_id", l.SID())
	}
	return uc.hasher.Verify(code, l.Salt(), l.Hash())
}

func (uc *VerifyLicenseUseCase) fromCache(ctx context.Context, code, deviceID, clientIP string) *dto.VerifyResult {
	if uc.cache == nil {
		return nil
	}
	grant, err := uc.cache.Get(ctx, code, deviceID)
	if err != nil {
		uc.logger.Warnw("verification cache lookup failed", "error", err)
		return nil
	}
	if grant == nil {
		return nil
	}
	if grant.ExpiresAt != nil && uc.clock.Now().After(*grant.ExpiresAt) {
		return nil
	}

	uc.audit.Append(ctx, auditlog.Record{
		LicenseID: grant.LicenseID,
		Action:    audit.ActionVerify,
		Success:   true,
		ClientIP:  clientIP,
		DeviceID:  deviceID,
		Details:   fmt.Sprintf("device_count=%d, cached", grant.DeviceCount),
	})
	uc.metrics.Verification(verifyResultGranted)

	return dto.Granted(&dto.LicenseInfo{
		LicenseID:   grant.LicenseID,
		Code:        code,
		PlanID:      grant.PlanID,
		ExpiresAt:   grant.ExpiresAt,
		ExpiryDate:  license.FormatExpiry(grant.ExpiresAt),
		DeviceCount: grant.DeviceCount,
	})
}

// generation must be read before the store so that a revoke committed
// after our read always outdates the grant we are about to cache.
func (uc *VerifyLicenseUseCase) generation(ctx context.Context, code string) (int64, bool) {
	if uc.cache == nil {
		return 0, false
	}
	gen, err := uc.cache.Generation(ctx, code)
	if err != nil {
		uc.logger.Warnw("verification cache generation lookup failed", "error", err)
		return 0, false
	}
	return gen, true
}

// remember caches a grant. Binding a new device changes the device count
// seen by every other cached device, so their entries are dropped and this
// grant waits for the next repeat verification.
func (uc *VerifyLicenseUseCase) remember(ctx context.Context, code, deviceID string, gen int64, cacheable bool, out verifyOutcome) {
	if uc.cache == nil {
		return
	}
	if out.bound || out.healed {
		uc.invalidate(ctx, code, true)
		return
	}
	if !cacheable {
		return
	}
	grant := &license.VerifiedGrant{
		LicenseID:   out.lic.SID(),
		PlanID:      out.lic.PlanID(),
		ExpiresAt:   out.lic.ExpiresAt(),
		DeviceCount: out.lic.DeviceCount(),
	}
	if err := uc.cache.Put(ctx, code, deviceID, gen, grant); err != nil {
		uc.logger.Warnw("failed to cache verification", "error", err)
	}
}

func (uc *VerifyLicenseUseCase) invalidate(ctx context.Context, code string, exists bool) {
	if uc.cache == nil || !exists {
		return
	}
	if err := uc.cache.Invalidate(ctx, code); err != nil {
		uc.logger.Warnw("failed to invalidate verification cache", "code", utils.MaskCode(code), "error", err)
	}
}
