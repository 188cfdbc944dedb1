package payment

import "context"

// TransactionRepository stores payment idempotency records.
// Lookups return (nil, nil) when nothing matches.
type TransactionRepository interface {
	// Create fails with a duplicate-key error when transactionID already exists.
	Create(ctx context.Context, tx *Transaction) error
	Update(ctx context.Context, tx *Transaction) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)
	// ListPendingProvisioning returns success transactions without a license,
	// oldest first.
	ListPendingProvisioning(ctx context.Context, limit int) ([]*Transaction, error)
}
