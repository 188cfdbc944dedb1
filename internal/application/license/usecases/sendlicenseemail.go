package usecases

import (
	"context"
	"net/mail"
	"strings"

	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/infrastructure/metrics"
	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

type SendLicenseEmailCommand struct {
	Code  string
	Email string
}

// SendLicenseEmailUseCase resends a license to a customer on admin request.
// Unlike payment notifications it runs synchronously so the admin sees
// delivery failures.
type SendLicenseEmailUseCase struct {
	licenseRepo license.Repository
	notifier    license.Notifier
	metrics     *metrics.Metrics
	logger      logger.Interface
}

func NewSendLicenseEmailUseCase(
	licenseRepo license.Repository,
	notifier license.Notifier,
	m *metrics.Metrics,
	logger logger.Interface,
) *SendLicenseEmailUseCase {
	return &SendLicenseEmailUseCase{
		licenseRepo: licenseRepo,
		notifier:    notifier,
		metrics:     m,
		logger:      logger,
	}
}

func (uc *SendLicenseEmailUseCase) Execute(ctx context.Context, cmd SendLicenseEmailCommand) error {
	email := strings.TrimSpace(cmd.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.NewValidationError("invalid email address", email)
	}

	l, err := findByCode(ctx, uc.licenseRepo, cmd.Code)
	if err != nil {
		return err
	}

	if err := uc.notifier.SendLicense(ctx, email, license.NewNotification(l)); err != nil {
		uc.metrics.EmailSent(false)
		uc.logger.Errorw("failed to send license email",
			"license_id", l.SID(),
			"email", utils.MaskEmail(email),
			"error", err,
		)
		return errors.NewInternalError("failed to send license email", err.Error())
	}

	uc.metrics.EmailSent(true)
	uc.logger.Infow("license email sent", "license_id", l.SID(), "email", utils.MaskEmail(email))
	return nil
}
