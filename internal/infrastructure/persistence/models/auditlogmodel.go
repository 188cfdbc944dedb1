package models

import (
	"time"

	"github.com/orris-inc/licensor/internal/shared/constants"
)

// AuditLogModel is the append-only audit_log table.
type AuditLogModel struct {
	ID        uint      `gorm:"primaryKey"`
	LicenseID *string   `gorm:"size:32;index:idx_audit_log_license_created,priority:1"`
	Action    string    `gorm:"size:16;not null"`
	ClientIP  string    `gorm:"column:client_ip;size:64"`
	DeviceID  *string   `gorm:"size:255"`
	Status    string    `gorm:"size:16;not null"`
	Details   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index:idx_audit_log_license_created,priority:2"`
}

func (AuditLogModel) TableName() string {
	return constants.TableAuditLog
}
