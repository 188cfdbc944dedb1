package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/orris-inc/licensor/internal/application/auditlog"
	"github.com/orris-inc/licensor/internal/application/license/dto"
	"github.com/orris-inc/licensor/internal/domain/audit"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/infrastructure/metrics"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/constants"
	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/id"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

type GenerateLicenseCommand struct {
	PlanID string
	// ValidityDays nil issues a perpetual license.
	ValidityDays *int
	ClientIP     string
}

// GenerateLicenseUseCase is the License Generator.
type GenerateLicenseUseCase struct {
	licenseRepo license.Repository
	codes       license.CodeGenerator
	hasher      license.CodeHasher
	audit       AuditAppender
	clock       biztime.Clock
	maxDevices  int
	metrics     *metrics.Metrics
	logger      logger.Interface
}

func NewGenerateLicenseUseCase(
	licenseRepo license.Repository,
	codes license.CodeGenerator,
	hasher license.CodeHasher,
	audit AuditAppender,
	clock biztime.Clock,
	maxDevices int,
	m *metrics.Metrics,
	logger logger.Interface,
) *GenerateLicenseUseCase {
	return &GenerateLicenseUseCase{
		licenseRepo: licenseRepo,
		codes:       codes,
		hasher:      hasher,
		audit:       audit,
		clock:       clock,
		maxDevices:  maxDevices,
		metrics:     m,
		logger:      logger,
	}
}

func (uc *GenerateLicenseUseCase) Execute(ctx context.Context, cmd GenerateLicenseCommand) (*dto.LicenseRecord, error) {
	planID := strings.TrimSpace(cmd.PlanID)
	if planID == "" {
		return nil, errors.NewValidationError(license.ErrEmptyPlanID.Error())
	}
	if cmd.ValidityDays != nil && *cmd.ValidityDays <= 0 {
		return nil, errors.NewValidationError(license.ErrInvalidValidity.Error())
	}

	l, err := uc.mint(ctx, planID, cmd.ValidityDays)
	if err != nil {
		uc.logger.Errorw("failed to generate license", "plan_id", planID, "error", err)
		uc.audit.Append(ctx, auditlog.Record{
			Action:   audit.ActionGenerate,
			Success:  false,
			ClientIP: cmd.ClientIP,
			Details:  generateDetails(planID, cmd.ValidityDays),
		})
		return nil, fmt.Errorf("%w: %v", license.ErrGenerationFailed, err)
	}

	uc.audit.Append(ctx, auditlog.Record{
		LicenseID: l.SID(),
		Action:    audit.ActionGenerate,
		Success:   true,
		ClientIP:  cmd.ClientIP,
		Details:   generateDetails(planID, cmd.ValidityDays),
	})
	uc.metrics.LicenseGenerated(planID)

	uc.logger.Infow("license generated",
		"license_id", l.SID(),
		"code", utils.MaskCode(l.Code()),
		"plan_id", planID,
		"expiry_date", l.ExpiryDate(),
	)

	return dto.ToLicenseRecord(l), nil
}

// ExecuteBatch issues quantity independent licenses. It stops at the first
// failure and returns what was issued so far along with the error.
func (uc *GenerateLicenseUseCase) ExecuteBatch(ctx context.Context, cmd GenerateLicenseCommand, quantity int) ([]*dto.LicenseRecord, error) {
	if quantity < 1 || quantity > constants.MaxGenerateQuantity {
		return nil, errors.NewValidationError(
			fmt.Sprintf("quantity must be between 1 and %d", constants.MaxGenerateQuantity))
	}

	records := make([]*dto.LicenseRecord, 0, quantity)
	for i := 0; i < quantity; i++ {
		rec, err := uc.Execute(ctx, cmd)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (uc *GenerateLicenseUseCase) mint(ctx context.Context, planID string, validityDays *int) (*license.License, error) {
	code, err := uc.codes.Generate()
	if err != nil {
		return nil, err
	}
	salt, err := uc.hasher.NewSalt()
	if err != nil {
		return nil, err
	}
	hash, err := uc.hasher.Hash(code, salt)
	if err != nil {
		return nil, err
	}
	sid, err := id.NewLicenseID()
	if err != nil {
		return nil, err
	}

	l, err := license.NewLicense(sid, code, salt, hash, planID, validityDays, uc.maxDevices, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.licenseRepo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func generateDetails(planID string, validityDays *int) string {
	validity := license.PerpetualExpiry
	if validityDays != nil {
		validity = fmt.Sprintf("%d", *validityDays)
	}
	return fmt.Sprintf("plan_id=%s, validity_days=%s", planID, validity)
}
