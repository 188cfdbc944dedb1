package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/models"
)

// LicenseMapper provides mapping between domain and persistence models.
type LicenseMapper struct{}

// NewLicenseMapper creates a new mapper.
func NewLicenseMapper() *LicenseMapper {
	return &LicenseMapper{}
}

// ToModel converts a domain entity to a persistence model.
func (m *LicenseMapper) ToModel(l *license.License) (*models.LicenseModel, error) {
	if l == nil {
		return nil, nil
	}

	devicesJSON, err := json.Marshal(l.Devices())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize devices: %w", err)
	}

	return &models.LicenseModel{
		ID:             l.ID(),
		SID:            l.SID(),
		Code:           l.Code(),
		Salt:           l.Salt(),
		Hash:           l.Hash(),
		PlanID:         l.PlanID(),
		ExpiresAt:      l.ExpiresAt(),
		IsActive:       l.IsActive(),
		Devices:        datatypes.JSON(devicesJSON),
		MaxDevices:     l.MaxDevices(),
		FailedAttempts: l.FailedAttempts(),
		LastVerifiedAt: l.LastVerifiedAt(),
		CreatedAt:      l.CreatedAt(),
		UpdatedAt:      l.UpdatedAt(),
	}, nil
}

// ToDomain converts a persistence model to a domain entity.
func (m *LicenseMapper) ToDomain(model *models.LicenseModel) (*license.License, error) {
	if model == nil {
		return nil, nil
	}

	var devices []string
	if len(model.Devices) > 0 {
		if err := json.Unmarshal(model.Devices, &devices); err != nil {
			return nil, fmt.Errorf("failed to parse devices of license %s: %w", model.SID, err)
		}
	}

	return license.ReconstructLicense(license.ReconstructParams{
		ID:             model.ID,
		SID:            model.SID,
		Code:           model.Code,
		Salt:           model.Salt,
		Hash:           model.Hash,
		PlanID:         model.PlanID,
		CreatedAt:      model.CreatedAt.UTC(),
		ExpiresAt:      utcPtr(model.ExpiresAt),
		IsActive:       model.IsActive,
		Devices:        devices,
		MaxDevices:     model.MaxDevices,
		FailedAttempts: model.FailedAttempts,
		LastVerifiedAt: utcPtr(model.LastVerifiedAt),
		UpdatedAt:      model.UpdatedAt.UTC(),
	}), nil
}

// ToDomainList converts persistence models to domain entities.
func (m *LicenseMapper) ToDomainList(list []models.LicenseModel) ([]*license.License, error) {
	result := make([]*license.License, 0, len(list))
	for i := range list {
		l, err := m.ToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, nil
}
