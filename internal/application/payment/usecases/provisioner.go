package usecases

import (
	"context"
	"fmt"
	"time"

	licenseUsecases "github.com/orris-inc/licensor/internal/application/license/usecases"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/domain/payment"
	"github.com/orris-inc/licensor/internal/infrastructure/metrics"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/goroutine"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

const emailSendTimeout = 30 * time.Second

// provisioner generates the license for a paid transaction and links it.
// It is shared by the webhook path and the retry job.
type provisioner struct {
	paymentRepo  payment.TransactionRepository
	issuer       LicenseIssuer
	notifier     license.Notifier
	clock        biztime.Clock
	defaultDays  int
	metrics      *metrics.Metrics
	logger       logger.Interface
	emailTimeout time.Duration
}

func (p *provisioner) provision(ctx context.Context, txn *payment.Transaction) (*license.Notification, error) {
	record, err := p.issuer.Execute(ctx, licenseUsecases.GenerateLicenseCommand{
		PlanID:       txn.PlanID(),
		ValidityDays: payment.ValidityForPlan(txn.PlanID(), p.defaultDays),
	})
	if err != nil {
		return nil, fmt.Errorf("generate license for transaction %s: %w", txn.TransactionID(), err)
	}

	if err := txn.AttachLicense(record.LicenseID, p.clock.Now()); err != nil {
		return nil, err
	}
	if err := p.paymentRepo.Update(ctx, txn); err != nil {
		// The license exists but is unlinked, so the row stays pending and
		// the retry job will issue a replacement.
		p.logger.Errorw("failed to link license to transaction",
			"transaction_id", txn.TransactionID(),
			"license_id", record.LicenseID,
			"error", err,
		)
		return nil, fmt.Errorf("link license to transaction %s: %w", txn.TransactionID(), err)
	}

	n := license.Notification{
		Code:       record.Code,
		PlanID:     record.PlanID,
		IssuedAt:   record.CreatedAt,
		ExpiryDate: record.ExpiryDate,
	}
	return &n, nil
}

// notifyAsync sends the license email without blocking the caller. A failed
// send is logged and counted; the license stays valid.
func (p *provisioner) notifyAsync(transactionID, to string, n license.Notification) {
	if p.notifier == nil || to == "" {
		return
	}
	timeout := p.emailTimeout
	if timeout <= 0 {
		timeout = emailSendTimeout
	}
	goroutine.SafeGoWithTimeout(p.logger, "license-email", timeout, func(ctx context.Context) {
		if err := p.notifier.SendLicense(ctx, to, n); err != nil {
			p.metrics.EmailSent(false)
			p.logger.Errorw("failed to send license email",
				"transaction_id", transactionID,
				"email", utils.MaskEmail(to),
				"error", err,
			)
			return
		}
		p.metrics.EmailSent(true)
		p.logger.Infow("license email sent", "transaction_id", transactionID, "email", utils.MaskEmail(to))
	})
}
