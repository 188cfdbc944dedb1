package payment

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/orris-inc/licensor/internal/domain/payment/valueobjects"
)

// Transaction is the idempotency record for one provider payment.
type Transaction struct {
	id            uint
	transactionID string
	amount        vo.Money
	status        vo.PaymentStatus
	customerEmail string
	planID        string
	licenseID     *string
	rawDetails    map[string]any
	createdAt     time.Time
	updatedAt     time.Time
}

func NewTransaction(transactionID string, amount vo.Money, status vo.PaymentStatus, customerEmail, planID string, rawDetails map[string]any, now time.Time) (*Transaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}
	if rawDetails == nil {
		rawDetails = map[string]any{}
	}
	return &Transaction{
		transactionID: transactionID,
		amount:        amount,
		status:        status,
		customerEmail: strings.TrimSpace(customerEmail),
		planID:        NormalizePlanID(planID),
		rawDetails:    rawDetails,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// AttachLicense links the generated license. A transaction provisions at most once.
func (t *Transaction) AttachLicense(licenseID string, now time.Time) error {
	if t.licenseID != nil && *t.licenseID != "" {
		return fmt.Errorf("transaction %s already has license %s", t.transactionID, *t.licenseID)
	}
	t.licenseID = &licenseID
	t.updatedAt = now
	return nil
}

// SetCustomerEmail fills the email when a redelivered webhook carries one
// the first delivery did not.
func (t *Transaction) SetCustomerEmail(email string, now time.Time) {
	t.customerEmail = strings.TrimSpace(email)
	t.updatedAt = now
}

// NeedsProvisioning reports a paid transaction whose license was never generated.
func (t *Transaction) NeedsProvisioning() bool {
	return t.status.IsSuccess() && !t.HasLicense()
}

func (t *Transaction) HasLicense() bool {
	return t.licenseID != nil && *t.licenseID != ""
}

func (t *Transaction) ID() uint {
	return t.id
}

func (t *Transaction) TransactionID() string {
	return t.transactionID
}

func (t *Transaction) Amount() vo.Money {
	return t.amount
}

func (t *Transaction) Status() vo.PaymentStatus {
	return t.status
}

func (t *Transaction) CustomerEmail() string {
	return t.customerEmail
}

func (t *Transaction) PlanID() string {
	return t.planID
}

func (t *Transaction) LicenseID() *string {
	return t.licenseID
}

func (t *Transaction) RawDetails() map[string]any {
	return t.rawDetails
}

func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Transaction) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t *Transaction) SetID(id uint) {
	t.id = id
}

type TransactionReconstructParams struct {
	ID            uint
	TransactionID string
	Amount        vo.Money
	Status        vo.PaymentStatus
	CustomerEmail string
	PlanID        string
	LicenseID     *string
	RawDetails    map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func ReconstructTransaction(p TransactionReconstructParams) *Transaction {
	raw := p.RawDetails
	if raw == nil {
		raw = map[string]any{}
	}
	return &Transaction{
		id:            p.ID,
		transactionID: p.TransactionID,
		amount:        p.Amount,
		status:        p.Status,
		customerEmail: p.CustomerEmail,
		planID:        p.PlanID,
		licenseID:     p.LicenseID,
		rawDetails:    raw,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}
}
