package paymentgateway

import (
	"errors"
	"net/http"
)

// ErrMissingParams is wrapped with the names of the absent callback fields.
var ErrMissingParams = errors.New("payment callback missing required parameters")

// CallbackVerifier authenticates and parses a payment provider's
// asynchronous notification.
type CallbackVerifier interface {
	// VerifyCallback returns ErrMissingParams when required fields are absent
	// and a signature error when the payload was not signed by the merchant key.
	VerifyCallback(req *http.Request) (*CallbackData, error)
}

// CallbackData is the provider-neutral view of a verified notification.
type CallbackData struct {
	// TransactionID is the merchant order number, the idempotency key.
	TransactionID  string
	GatewayOrderNo string
	// Amount is the decimal string the provider reported, e.g. "9.90".
	Amount        string
	Currency      string
	Status        string
	PaymentType   string
	CustomerEmail string
	PlanID        string
	RawData       map[string]string
}
