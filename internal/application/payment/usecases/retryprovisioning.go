package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/domain/payment"
	"github.com/orris-inc/licensor/internal/infrastructure/metrics"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

const (
	retryBatchSize = 50
	// provisioningGrace skips rows a live webhook may still be provisioning.
	provisioningGrace = time.Minute
)

// RetryProvisioningUseCase issues licenses for paid transactions whose
// webhook crashed between recording the payment and generating the license.
type RetryProvisioningUseCase struct {
	provisioner
	lock        KeyedLock
	lockTimeout time.Duration
}

func NewRetryProvisioningUseCase(
	paymentRepo payment.TransactionRepository,
	issuer LicenseIssuer,
	notifier license.Notifier,
	lock KeyedLock,
	defaultValidityDays int,
	clock biztime.Clock,
	m *metrics.Metrics,
	logger logger.Interface,
) *RetryProvisioningUseCase {
	return &RetryProvisioningUseCase{
		provisioner: provisioner{
			paymentRepo: paymentRepo,
			issuer:      issuer,
			notifier:    notifier,
			clock:       clock,
			defaultDays: defaultValidityDays,
			metrics:     m,
			logger:      logger,
		},
		lock:        lock,
		lockTimeout: time.Second,
	}
}

// Execute returns the number of transactions provisioned in this run.
func (uc *RetryProvisioningUseCase) Execute(ctx context.Context) (int, error) {
	pending, err := uc.paymentRepo.ListPendingProvisioning(ctx, retryBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list transactions pending provisioning: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	cutoff := uc.clock.Now().Add(-provisioningGrace)
	provisioned := 0
	for _, txn := range pending {
		if txn.CreatedAt().After(cutoff) {
			continue
		}
		ok, err := uc.retry(ctx, txn)
		if err != nil {
			uc.logger.Warnw("provisioning retry failed",
				"transaction_id", txn.TransactionID(),
				"error", err,
			)
			continue
		}
		if ok {
			provisioned++
		}
	}

	if provisioned > 0 {
		uc.logger.Infow("provisioning retried",
			"provisioned", provisioned,
			"pending", len(pending),
		)
	}
	return provisioned, nil
}

func (uc *RetryProvisioningUseCase) retry(ctx context.Context, txn *payment.Transaction) (bool, error) {
	if uc.lock != nil {
		release, ok, err := uc.lock.Acquire(ctx, paymentLockPrefix+txn.TransactionID(), uc.lockTimeout)
		if err == nil && !ok {
			return false, nil
		}
		if err == nil {
			defer release()
		}
	}

	// Re-read under the lock: a webhook redelivery may have won the race.
	current, err := uc.paymentRepo.GetByTransactionID(ctx, txn.TransactionID())
	if err != nil {
		return false, err
	}
	if current == nil || !current.NeedsProvisioning() {
		return false, nil
	}

	n, err := uc.provision(ctx, current)
	if err != nil {
		return false, err
	}
	uc.metrics.PaymentOutcome("license_retried")
	uc.notifyAsync(current.TransactionID(), current.CustomerEmail(), *n)
	return true, nil
}
