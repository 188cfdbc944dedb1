package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/licensor/internal/domain/payment"
	vo "github.com/orris-inc/licensor/internal/domain/payment/valueobjects"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensor/internal/shared/db"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts the idempotency row. The raw driver error is wrapped so
// callers can detect unique violations with errors.IsDuplicateError.
func (r *PaymentRepository) Create(ctx context.Context, tx *payment.Transaction) error {
	model, err := mappers.PaymentToModel(tx)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	tx.SetID(model.ID)
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, tx *payment.Transaction) error {
	model, err := mappers.PaymentToModel(tx)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"email":      model.Email,
			"license_id": model.LicenseID,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}

	return nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*payment.Transaction, error) {
	var model models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("transaction_id = ?", transactionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by transaction_id: %w", err)
	}

	return mappers.PaymentToDomain(&model)
}

func (r *PaymentRepository) ListPendingProvisioning(ctx context.Context, limit int) ([]*payment.Transaction, error) {
	var list []models.PaymentModel

	query := db.GetTxFromContext(ctx, r.db).
		Where("status = ?", vo.PaymentStatusSuccess.String()).
		Where("license_id IS NULL OR license_id = ?", "").
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments pending provisioning: %w", err)
	}

	result := make([]*payment.Transaction, 0, len(list))
	for i := range list {
		tx, err := mappers.PaymentToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, nil
}
