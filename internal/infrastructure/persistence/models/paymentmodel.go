package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/licensor/internal/shared/constants"
)

// PaymentModel is the payments table; transaction_id is the idempotency key.
type PaymentModel struct {
	ID            uint           `gorm:"primaryKey"`
	TransactionID string         `gorm:"uniqueIndex;size:128;not null"`
	Amount        int64          `gorm:"not null"`
	Currency      string         `gorm:"size:10;not null;default:'CNY'"`
	Status        string         `gorm:"size:32;not null;index"`
	Email         string         `gorm:"size:255"`
	PlanID        string         `gorm:"column:plan_id;size:64;not null"`
	LicenseID     *string        `gorm:"size:32;index"`
	Details       datatypes.JSON
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PaymentModel) TableName() string {
	return constants.TablePayments
}
