package valueobjects

import "strings"

// PaymentStatus is the provider-reported state of a transaction.
// Only StatusSuccess provisions a license; every other value is recorded as is.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// providerSuccess lists provider spellings that mean the money arrived.
var providerSuccess = map[string]struct{}{
	"success":        {},
	"trade_success":  {},
	"trade_finished": {},
	"paid":           {},
	"completed":      {},
}

// NormalizeStatus maps a provider status onto PaymentStatus.
func NormalizeStatus(raw string) PaymentStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := providerSuccess[s]; ok {
		return PaymentStatusSuccess
	}
	if s == "" {
		return PaymentStatusPending
	}
	return PaymentStatus(s)
}

func (s PaymentStatus) IsSuccess() bool {
	return s == PaymentStatusSuccess
}

func (s PaymentStatus) String() string {
	return string(s)
}
