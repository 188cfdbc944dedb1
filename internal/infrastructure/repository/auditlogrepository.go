package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/licensor/internal/domain/audit"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensor/internal/shared/db"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Append(ctx context.Context, entry *audit.Entry) error {
	model := mappers.AuditEntryToModel(entry)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	entry.ID = model.ID
	return nil
}

func (r *AuditLogRepository) ListByLicense(ctx context.Context, licenseID string, limit int) ([]*audit.Entry, error) {
	var list []models.AuditLogModel
	query := db.GetTxFromContext(ctx, r.db).
		Where("license_id = ?", licenseID).
		Scopes(db.NewestFirst())
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]*audit.Entry, 0, len(list))
	for i := range list {
		entries = append(entries, mappers.AuditEntryToDomain(&list[i]))
	}
	return entries, nil
}
