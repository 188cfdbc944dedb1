package valueobjects

import (
	"fmt"
	"strconv"
	"strings"
)

const DefaultCurrency = "CNY"

// Money holds an amount in minor units to avoid float rounding.
type Money struct {
	amountInCents int64
	currency      string
}

func NewMoney(amountInCents int64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{
		amountInCents: amountInCents,
		currency:      strings.ToUpper(currency),
	}
}

// ParseMoney parses a decimal string such as "12.3" or "12.30" into minor units.
// More than two fractional digits are rejected.
func ParseMoney(amount, currency string) (Money, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return Money{}, fmt.Errorf("amount is required")
	}

	whole, frac, hasFrac := strings.Cut(amount, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return Money{}, fmt.Errorf("invalid amount %q", amount)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return Money{}, fmt.Errorf("invalid amount %q", amount)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || cents < 0 {
		return Money{}, fmt.Errorf("invalid amount %q", amount)
	}

	return NewMoney(units*100+cents, currency), nil
}

func (m Money) AmountInCents() int64 {
	return m.amountInCents
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) IsPositive() bool {
	return m.amountInCents > 0
}

// Decimal renders the amount with two fractional digits, e.g. "12.30".
func (m Money) Decimal() string {
	return fmt.Sprintf("%d.%02d", m.amountInCents/100, m.amountInCents%100)
}

func (m Money) String() string {
	return m.Decimal() + " " + m.currency
}
