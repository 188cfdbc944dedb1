package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensor/internal/domain/payment"
	vo "github.com/orris-inc/licensor/internal/domain/payment/valueobjects"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/testdb"
	"github.com/orris-inc/licensor/internal/shared/errors"
)

func newTransaction(t *testing.T, id string, status vo.PaymentStatus) *payment.Transaction {
	t.Helper()
	tx, err := payment.NewTransaction(id, vo.NewMoney(1990, "CNY"), status, "buyer@example.com", "pro_yearly",
		map[string]any{"trade_no": "Z" + id}, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return tx
}

func TestPaymentRepository_CreateAndGet(t *testing.T) {
	repo := NewPaymentRepository(testdb.Open(t))
	ctx := context.Background()

	tx := newTransaction(t, "T1", vo.PaymentStatusSuccess)
	require.NoError(t, repo.Create(ctx, tx))
	assert.NotZero(t, tx.ID())

	found, err := repo.GetByTransactionID(ctx, "T1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(1990), found.Amount().AmountInCents())
	assert.Equal(t, "pro_yearly", found.PlanID())
	assert.Equal(t, "ZT1", found.RawDetails()["trade_no"])
	assert.Nil(t, found.LicenseID())

	missing, err := repo.GetByTransactionID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPaymentRepository_DuplicateTransaction(t *testing.T) {
	repo := NewPaymentRepository(testdb.Open(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTransaction(t, "T1", vo.PaymentStatusSuccess)))
	err := repo.Create(ctx, newTransaction(t, "T1", vo.PaymentStatusSuccess))

	require.Error(t, err)
	assert.True(t, errors.IsDuplicateError(err))
}

func TestPaymentRepository_PendingProvisioning(t *testing.T) {
	repo := NewPaymentRepository(testdb.Open(t))
	ctx := context.Background()

	provisioned := newTransaction(t, "T1", vo.PaymentStatusSuccess)
	require.NoError(t, repo.Create(ctx, provisioned))
	require.NoError(t, provisioned.AttachLicense("lic_1", time.Now().UTC()))
	require.NoError(t, repo.Update(ctx, provisioned))

	require.NoError(t, repo.Create(ctx, newTransaction(t, "T2", vo.PaymentStatusSuccess)))
	require.NoError(t, repo.Create(ctx, newTransaction(t, "T3", vo.NormalizeStatus("TRADE_CLOSED"))))

	pending, err := repo.ListPendingProvisioning(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "T2", pending[0].TransactionID())
}
