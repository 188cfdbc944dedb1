package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/orris-inc/licensor/internal/application/license/dto"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

type RenewLicenseCommand struct {
	Code         string
	ValidityDays *int
	ClientIP     string
}

// RenewLicenseUseCase issues a replacement license on the same plan and
// revokes the old one, pointing its audit trail at the replacement.
type RenewLicenseUseCase struct {
	licenseRepo license.Repository
	generate    GenerateLicenseExecutor
	revoke      RevokeLicenseExecutor
	logger      logger.Interface
}

func NewRenewLicenseUseCase(
	licenseRepo license.Repository,
	generate GenerateLicenseExecutor,
	revoke RevokeLicenseExecutor,
	logger logger.Interface,
) *RenewLicenseUseCase {
	return &RenewLicenseUseCase{
		licenseRepo: licenseRepo,
		generate:    generate,
		revoke:      revoke,
		logger:      logger,
	}
}

func (uc *RenewLicenseUseCase) Execute(ctx context.Context, cmd RenewLicenseCommand) (*dto.LicenseRecord, error) {
	code := strings.TrimSpace(cmd.Code)
	if code == "" {
		return nil, errors.NewValidationError(license.ErrEmptyCode.Error())
	}

	old, err := uc.licenseRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("renew license: %w", err)
	}
	if old == nil {
		return nil, errors.NewNotFoundError(license.ErrLicenseNotFound.Error())
	}

	record, err := uc.generate.Execute(ctx, GenerateLicenseCommand{
		PlanID:       old.PlanID(),
		ValidityDays: cmd.ValidityDays,
		ClientIP:     cmd.ClientIP,
	})
	if err != nil {
		return nil, err
	}

	// The replacement already exists; a failed revoke leaves two active
	// licenses, which an operator can fix by revoking again.
	if _, err := uc.revoke.Execute(ctx, RevokeLicenseCommand{
		Code:     code,
		ClientIP: cmd.ClientIP,
		Reason:   fmt.Sprintf("renewed as %s", record.LicenseID),
	}); err != nil {
		uc.logger.Errorw("failed to revoke renewed license",
			"old_license_id", old.SID(),
			"new_license_id", record.LicenseID,
			"error", err,
		)
	}

	uc.logger.Infow("license renewed", "old_license_id", old.SID(), "new_license_id", record.LicenseID)
	return record, nil
}
