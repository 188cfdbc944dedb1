package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensor/internal/shared/db"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

// LicenseRepository is the gorm-backed License Store.
type LicenseRepository struct {
	db     *gorm.DB
	mapper *mappers.LicenseMapper
	logger logger.Interface
}

func NewLicenseRepository(db *gorm.DB, logger logger.Interface) *LicenseRepository {
	return &LicenseRepository{
		db:     db,
		mapper: mappers.NewLicenseMapper(),
		logger: logger,
	}
}

func (r *LicenseRepository) Create(ctx context.Context, l *license.License) error {
	model, err := r.mapper.ToModel(l)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create license: %w", err)
	}

	l.SetID(model.ID)
	return nil
}

func (r *LicenseRepository) Update(ctx context.Context, l *license.License) error {
	model, err := r.mapper.ToModel(l)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.LicenseModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"salt":             model.Salt,
			"hash":             model.Hash,
			"is_active":        model.IsActive,
			"devices":          model.Devices,
			"failed_attempts":  model.FailedAttempts,
			"last_verified_at": model.LastVerifiedAt,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update license: %w", result.Error)
	}

	return nil
}

func (r *LicenseRepository) GetByCode(ctx context.Context, code string) (*license.License, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("code = ?", code))
}

func (r *LicenseRepository) GetByCodeForUpdate(ctx context.Context, code string) (*license.License, error) {
	if !db.InTransaction(ctx) {
		r.logger.Warnw("row lock requested outside a transaction", "operation", "GetByCodeForUpdate")
	}
	return r.first(db.GetTxFromContext(ctx, r.db).Scopes(db.ForUpdate()).Where("code = ?", code))
}

func (r *LicenseRepository) GetBySID(ctx context.Context, sid string) (*license.License, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("sid = ?", sid))
}

func (r *LicenseRepository) ListAfter(ctx context.Context, afterID uint, limit int) ([]*license.License, error) {
	var list []models.LicenseModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list licenses: %w", err)
	}
	return r.mapper.ToDomainList(list)
}

func (r *LicenseRepository) ListMissingHash(ctx context.Context, limit int) ([]*license.License, error) {
	var list []models.LicenseModel
	query := db.GetTxFromContext(ctx, r.db).
		Where("hash = ? OR hash IS NULL", "").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list licenses missing hash: %w", err)
	}
	return r.mapper.ToDomainList(list)
}

func (r *LicenseRepository) first(query *gorm.DB) (*license.License, error) {
	var model models.LicenseModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get license: %w", err)
	}
	return r.mapper.ToDomain(&model)
}
