package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/licensor/internal/shared/constants"
)

// LicenseModel is the licenses table.
type LicenseModel struct {
	ID             uint           `gorm:"primaryKey"`
	SID            string         `gorm:"column:sid;uniqueIndex;size:32;not null"`
	Code           string         `gorm:"uniqueIndex;size:128;not null"`
	Salt           string         `gorm:"size:64;not null"`
	Hash           string         `gorm:"size:255;not null;default:''"`
	PlanID         string         `gorm:"column:plan_id;size:64;not null;index"`
	ExpiresAt      *time.Time     `gorm:"index"`
	IsActive       bool           `gorm:"not null;default:true"`
	Devices        datatypes.JSON `gorm:"not null"`
	MaxDevices     int            `gorm:"not null;default:3"`
	FailedAttempts int            `gorm:"not null;default:0"`
	LastVerifiedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (LicenseModel) TableName() string {
	return constants.TableLicenses
}
