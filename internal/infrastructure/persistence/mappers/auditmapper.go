package mappers

import (
	"github.com/orris-inc/licensor/internal/domain/audit"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/models"
)

func AuditEntryToModel(e *audit.Entry) *models.AuditLogModel {
	return &models.AuditLogModel{
		ID:        e.ID,
		LicenseID: e.LicenseID,
		Action:    string(e.Action),
		ClientIP:  e.ClientIP,
		DeviceID:  e.DeviceID,
		Status:    string(e.Status),
		Details:   e.Details,
		CreatedAt: e.CreatedAt,
	}
}

func AuditEntryToDomain(model *models.AuditLogModel) *audit.Entry {
	return &audit.Entry{
		ID:        model.ID,
		LicenseID: model.LicenseID,
		Action:    audit.Action(model.Action),
		ClientIP:  model.ClientIP,
		DeviceID:  model.DeviceID,
		Status:    audit.Status(model.Status),
		Details:   model.Details,
		CreatedAt: model.CreatedAt.UTC(),
	}
}
