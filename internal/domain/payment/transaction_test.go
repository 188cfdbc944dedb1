package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/orris-inc/licensor/internal/domain/payment/valueobjects"
)

var testNow = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

func TestNewTransaction_Defaults(t *testing.T) {
	tx, err := NewTransaction(" T1 ", vo.NewMoney(990, "usd"), vo.PaymentStatusSuccess, " a@b.c ", "", nil, testNow)
	require.NoError(t, err)

	assert.Equal(t, "T1", tx.TransactionID())
	assert.Equal(t, "a@b.c", tx.CustomerEmail())
	assert.Equal(t, DefaultPlanID, tx.PlanID())
	assert.NotNil(t, tx.RawDetails())
	assert.True(t, tx.NeedsProvisioning())
}

func TestNewTransaction_RequiresID(t *testing.T) {
	_, err := NewTransaction("  ", vo.NewMoney(1, ""), vo.PaymentStatusSuccess, "", "pro", nil, testNow)
	assert.Error(t, err)
}

func TestAttachLicense_Once(t *testing.T) {
	tx, err := NewTransaction("T1", vo.NewMoney(1, ""), vo.PaymentStatusSuccess, "", "pro", nil, testNow)
	require.NoError(t, err)

	require.NoError(t, tx.AttachLicense("lic_1", testNow))
	assert.True(t, tx.HasLicense())
	assert.False(t, tx.NeedsProvisioning())

	assert.Error(t, tx.AttachLicense("lic_2", testNow))
	assert.Equal(t, "lic_1", *tx.LicenseID())
}

func TestNeedsProvisioning_NonSuccess(t *testing.T) {
	tx, err := NewTransaction("T1", vo.NewMoney(1, ""), vo.NormalizeStatus("TRADE_CLOSED"), "", "pro", nil, testNow)
	require.NoError(t, err)

	assert.False(t, tx.NeedsProvisioning())
}

func TestValidityForPlan(t *testing.T) {
	tests := []struct {
		plan string
		want int
	}{
		{"pro_monthly", 30},
		{"Team-Quarterly", 90},
		{"pro_yearly", 365},
		{"enterprise_annual", 365},
		{"standard", 180},
	}
	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			got := ValidityForPlan(tt.plan, 180)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	assert.Nil(t, ValidityForPlan("premium_lifetime", 180))
}
