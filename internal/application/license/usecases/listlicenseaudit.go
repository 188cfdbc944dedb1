package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/licensor/internal/application/license/dto"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

type ListLicenseAuditUseCase struct {
	licenseRepo license.Repository
	audit       AuditQuerier
	logger      logger.Interface
}

func NewListLicenseAuditUseCase(licenseRepo license.Repository, audit AuditQuerier, logger logger.Interface) *ListLicenseAuditUseCase {
	return &ListLicenseAuditUseCase{
		licenseRepo: licenseRepo,
		audit:       audit,
		logger:      logger,
	}
}

// Execute returns the audit trail of the license with code, newest first.
func (uc *ListLicenseAuditUseCase) Execute(ctx context.Context, code string, limit int) ([]*dto.AuditEntryDTO, error) {
	l, err := findByCode(ctx, uc.licenseRepo, code)
	if err != nil {
		return nil, err
	}
	entries, err := uc.audit.Query(ctx, l.SID(), limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	return dto.ToAuditEntryDTOs(entries), nil
}
