package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/orris-inc/licensor/internal/application/license/dto"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

type GetLicenseUseCase struct {
	licenseRepo license.Repository
	logger      logger.Interface
}

func NewGetLicenseUseCase(licenseRepo license.Repository, logger logger.Interface) *GetLicenseUseCase {
	return &GetLicenseUseCase{
		licenseRepo: licenseRepo,
		logger:      logger,
	}
}

func (uc *GetLicenseUseCase) Execute(ctx context.Context, code string) (*dto.LicenseDetail, error) {
	l, err := findByCode(ctx, uc.licenseRepo, code)
	if err != nil {
		return nil, err
	}
	return dto.ToLicenseDetail(l), nil
}

// findByCode maps a missing license to a not found AppError.
func findByCode(ctx context.Context, repo license.Repository, code string) (*license.License, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.NewValidationError(license.ErrEmptyCode.Error())
	}
	l, err := repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}
	if l == nil {
		return nil, errors.NewNotFoundError(license.ErrLicenseNotFound.Error())
	}
	return l, nil
}
