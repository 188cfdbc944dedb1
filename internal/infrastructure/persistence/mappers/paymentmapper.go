package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/orris-inc/licensor/internal/domain/payment"
	vo "github.com/orris-inc/licensor/internal/domain/payment/valueobjects"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/models"
)

func PaymentToModel(tx *payment.Transaction) (*models.PaymentModel, error) {
	var detailsJSON datatypes.JSON
	if len(tx.RawDetails()) > 0 {
		b, err := json.Marshal(tx.RawDetails())
		if err != nil {
			return nil, fmt.Errorf("failed to serialize payment details: %w", err)
		}
		detailsJSON = b
	}

	return &models.PaymentModel{
		ID:            tx.ID(),
		TransactionID: tx.TransactionID(),
		Amount:        tx.Amount().AmountInCents(),
		Currency:      tx.Amount().Currency(),
		Status:        tx.Status().String(),
		Email:         tx.CustomerEmail(),
		PlanID:        tx.PlanID(),
		LicenseID:     tx.LicenseID(),
		Details:       detailsJSON,
		CreatedAt:     tx.CreatedAt(),
		UpdatedAt:     tx.UpdatedAt(),
	}, nil
}

func PaymentToDomain(model *models.PaymentModel) (*payment.Transaction, error) {
	details := map[string]any{}
	if len(model.Details) > 0 {
		if err := json.Unmarshal(model.Details, &details); err != nil {
			return nil, fmt.Errorf("failed to parse details of payment %s: %w", model.TransactionID, err)
		}
	}

	return payment.ReconstructTransaction(payment.TransactionReconstructParams{
		ID:            model.ID,
		TransactionID: model.TransactionID,
		Amount:        vo.NewMoney(model.Amount, model.Currency),
		Status:        vo.PaymentStatus(model.Status),
		CustomerEmail: model.Email,
		PlanID:        model.PlanID,
		LicenseID:     model.LicenseID,
		RawDetails:    details,
		CreatedAt:     model.CreatedAt.UTC(),
		UpdatedAt:     model.UpdatedAt.UTC(),
	}), nil
}
