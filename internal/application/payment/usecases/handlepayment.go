package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orris-inc/licensor/internal/application/license/dto"
	licenseUsecases "github.com/orris-inc/licensor/internal/application/license/usecases"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/domain/payment"
	vo "github.com/orris-inc/licensor/internal/domain/payment/valueobjects"
	"github.com/orris-inc/licensor/internal/infrastructure/metrics"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

const (
	DefaultLockTimeout = 10 * time.Second
	paymentLockPrefix  = "payment:"
)

// KeyedLock is an advisory lock scoped to one key. ok is false when the
// lock could not be taken within timeout.
type KeyedLock interface {
	Acquire(ctx context.Context, key string, timeout time.Duration) (release func(), ok bool, err error)
}

// LicenseIssuer is the License Generator as seen by the payment intake.
type LicenseIssuer interface {
	Execute(ctx context.Context, cmd licenseUsecases.GenerateLicenseCommand) (*dto.LicenseRecord, error)
}

type Outcome string

const (
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeLicenseGenerated Outcome = "license_generated"
	OutcomeRecorded         Outcome = "recorded"
)

type HandlePaymentCommand struct {
	TransactionID string
	Amount        string
	Currency      string
	Status        string
	CustomerEmail string
	PlanID        string
	RawDetails    map[string]any
}

type HandlePaymentResult struct {
	Outcome Outcome
	// License is set only for OutcomeLicenseGenerated.
	License *dto.LicenseRecord
}

// HandlePaymentUseCase is the Payment Intake. It provisions at most one
// license per provider transaction id.
type HandlePaymentUseCase struct {
	provisioner
	licenseRepo license.Repository
	lock        KeyedLock
	lockTimeout time.Duration
}

func NewHandlePaymentUseCase(
	paymentRepo payment.TransactionRepository,
	licenseRepo license.Repository,
	issuer LicenseIssuer,
	notifier license.Notifier,
	lock KeyedLock,
	lockTimeout time.Duration,
	defaultValidityDays int,
	clock biztime.Clock,
	m *metrics.Metrics,
	logger logger.Interface,
) *HandlePaymentUseCase {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &HandlePaymentUseCase{
		provisioner: provisioner{
			paymentRepo: paymentRepo,
			issuer:      issuer,
			notifier:    notifier,
			clock:       clock,
			defaultDays: defaultValidityDays,
			metrics:     m,
			logger:      logger,
		},
		licenseRepo: licenseRepo,
		lock:        lock,
		lockTimeout: lockTimeout,
	}
}

func (uc *HandlePaymentUseCase) Execute(ctx context.Context, cmd HandlePaymentCommand) (*HandlePaymentResult, error) {
	txID := strings.TrimSpace(cmd.TransactionID)
	if txID == "" {
		return nil, errors.NewValidationError("transaction ID is required")
	}
	amount, err := vo.ParseMoney(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, errors.NewValidationError("invalid payment amount", err.Error())
	}

	txn, claimed, err := uc.claim(ctx, txID, amount, cmd)
	if err != nil {
		return nil, err
	}
	if !claimed {
		uc.metrics.PaymentOutcome(string(OutcomeAlreadyProcessed))
		return &HandlePaymentResult{Outcome: OutcomeAlreadyProcessed}, nil
	}

	if !txn.Status().IsSuccess() {
		uc.metrics.PaymentOutcome(string(OutcomeRecorded))
		uc.logger.Infow("payment recorded without provisioning",
			"transaction_id", txID,
			"status", txn.Status(),
		)
		return &HandlePaymentResult{Outcome: OutcomeRecorded}, nil
	}

	n, err := uc.provision(ctx, txn)
	if err != nil {
		uc.metrics.PaymentOutcome("provisioning_failed")
		uc.logger.Errorw("failed to provision license for payment",
			"transaction_id", txID,
			"error", err,
		)
		return nil, err
	}

	uc.notifyAsync(txID, txn.CustomerEmail(), *n)
	uc.metrics.PaymentOutcome(string(OutcomeLicenseGenerated))
	uc.logger.Infow("license provisioned for payment",
		"transaction_id", txID,
		"license_id", *txn.LicenseID(),
		"plan_id", txn.PlanID(),
		"email", utils.MaskEmail(txn.CustomerEmail()),
	)

	return &HandlePaymentResult{
		Outcome: OutcomeLicenseGenerated,
		License: &dto.LicenseRecord{
			LicenseID:  *txn.LicenseID(),
			Code:       n.Code,
			PlanID:     n.PlanID,
			CreatedAt:  n.IssuedAt,
			ExpiryDate: n.ExpiryDate,
		},
	}, nil
}

// claim runs the existence check and insert under the transaction lock.
// claimed is false when another delivery owns or already owned the id.
func (uc *HandlePaymentUseCase) claim(ctx context.Context, txID string, amount vo.Money, cmd HandlePaymentCommand) (*payment.Transaction, bool, error) {
	release, ok, err := uc.lock.Acquire(ctx, paymentLockPrefix+txID, uc.lockTimeout)
	switch {
	case err != nil:
		// The insert below is the real guard; the lock only saves work.
		uc.logger.Warnw("payment lock unavailable, continuing without it",
			"transaction_id", txID,
			"error", err,
		)
	case !ok:
		uc.logger.Infow("payment is being processed elsewhere", "transaction_id", txID)
		return nil, false, nil
	default:
		defer release()
	}

	existing, err := uc.paymentRepo.GetByTransactionID(ctx, txID)
	if err != nil {
		return nil, false, fmt.Errorf("look up transaction: %w", err)
	}
	if existing != nil {
		uc.logger.Infow("payment already processed", "transaction_id", txID)
		uc.redeliver(ctx, existing, cmd.CustomerEmail)
		return nil, false, nil
	}

	txn, err := payment.NewTransaction(
		txID,
		amount,
		vo.NormalizeStatus(cmd.Status),
		cmd.CustomerEmail,
		cmd.PlanID,
		cmd.RawDetails,
		uc.clock.Now(),
	)
	if err != nil {
		return nil, false, errors.NewValidationError(err.Error())
	}
	if err := uc.paymentRepo.Create(ctx, txn); err != nil {
		if errors.IsDuplicateError(err) {
			uc.logger.Infow("payment inserted concurrently", "transaction_id", txID)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("record transaction: %w", err)
	}
	return txn, true, nil
}

// redeliver sends the license once when a repeated webhook carries the email
// the first delivery lacked. Storing the email makes later repeats no-ops.
func (uc *HandlePaymentUseCase) redeliver(ctx context.Context, txn *payment.Transaction, email string) {
	email = strings.TrimSpace(email)
	if email == "" || txn.CustomerEmail() != "" || !txn.HasLicense() {
		return
	}

	l, err := uc.licenseRepo.GetBySID(ctx, *txn.LicenseID())
	if err != nil || l == nil {
		uc.logger.Warnw("license for redelivered payment not found",
			"transaction_id", txn.TransactionID(),
			"license_id", *txn.LicenseID(),
			"error", err,
		)
		return
	}

	txn.SetCustomerEmail(email, uc.clock.Now())
	if err := uc.paymentRepo.Update(ctx, txn); err != nil {
		uc.logger.Errorw("failed to store email for redelivered payment",
			"transaction_id", txn.TransactionID(),
			"error", err,
		)
		return
	}
	uc.notifyAsync(txn.TransactionID(), email, license.NewNotification(l))
}
