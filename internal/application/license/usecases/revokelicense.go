package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/orris-inc/licensor/internal/application/auditlog"
	"github.com/orris-inc/licensor/internal/domain/audit"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/infrastructure/metrics"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

const defaultRevokeReason = "admin action"

type RevokeLicenseCommand struct {
	Code     string
	ClientIP string
	Reason   string
}

type RevokeLicenseUseCase struct {
	licenseRepo license.Repository
	txManager   TransactionRunner
	cache       license.VerificationCache
	audit       AuditAppender
	clock       biztime.Clock
	metrics     *metrics.Metrics
	logger      logger.Interface
}

func NewRevokeLicenseUseCase(
	licenseRepo license.Repository,
	txManager TransactionRunner,
	audit AuditAppender,
	clock biztime.Clock,
	m *metrics.Metrics,
	logger logger.Interface,
) *RevokeLicenseUseCase {
	return &RevokeLicenseUseCase{
		licenseRepo: licenseRepo,
		txManager:   txManager,
		audit:       audit,
		clock:       clock,
		metrics:     m,
		logger:      logger,
	}
}

func (uc *RevokeLicenseUseCase) SetVerificationCache(cache license.VerificationCache) {
	uc.cache = cache
}

// Execute returns false for unknown or already revoked licenses. An audit
// entry is appended either way.
func (uc *RevokeLicenseUseCase) Execute(ctx context.Context, cmd RevokeLicenseCommand) (bool, error) {
	code := strings.TrimSpace(cmd.Code)
	if code == "" {
		return false, errors.NewValidationError(license.ErrEmptyCode.Error())
	}
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		reason = defaultRevokeReason
	}

	var (
		licenseID string
		revoked   bool
		details   string
	)
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		l, err := uc.licenseRepo.GetByCodeForUpdate(txCtx, code)
		if err != nil {
			return err
		}
		if l == nil {
			details = "license not found"
			return nil
		}
		licenseID = l.SID()
		if !l.Revoke(uc.clock.Now()) {
			details = "already revoked"
			return nil
		}
		revoked = true
		details = reason
		return uc.licenseRepo.Update(txCtx, l)
	})
	if err != nil {
		uc.logger.Errorw("failed to revoke license", "code", utils.MaskCode(code), "error", err)
		return false, fmt.Errorf("revoke license: %w", err)
	}

	if licenseID != "" && uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, code); err != nil {
			uc.logger.Warnw("failed to invalidate verification cache", "license_id", licenseID, "error", err)
		}
	}

	uc.audit.Append(ctx, auditlog.Record{
		LicenseID: licenseID,
		Action:    audit.ActionRevoke,
		Success:   revoked,
		ClientIP:  cmd.ClientIP,
		Details:   details,
	})
	uc.metrics.Revocation(revoked)

	uc.logger.Infow("license revoke processed",
		"license_id", licenseID,
		"code", utils.MaskCode(code),
		"revoked", revoked,
		"details", details,
	)
	return revoked, nil
}
