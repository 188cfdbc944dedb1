package handlers

import (
	"context"

	"github.com/orris-inc/licensor/internal/application/license/dto"
	"github.com/orris-inc/licensor/internal/application/license/usecases"
)

// Use case interfaces for LicenseHandler

type verifyLicenseUseCase interface {
	Execute(ctx context.Context, cmd usecases.VerifyLicenseCommand) (*dto.VerifyResult, error)
}

type generateLicenseUseCase interface {
	Execute(ctx context.Context, cmd usecases.GenerateLicenseCommand) (*dto.LicenseRecord, error)
	ExecuteBatch(ctx context.Context, cmd usecases.GenerateLicenseCommand, quantity int) ([]*dto.LicenseRecord, error)
}

type revokeLicenseUseCase interface {
	Execute(ctx context.Context, cmd usecases.RevokeLicenseCommand) (bool, error)
}

type renewLicenseUseCase interface {
	Execute(ctx context.Context, cmd usecases.RenewLicenseCommand) (*dto.LicenseRecord, error)
}

type getLicenseUseCase interface {
	Execute(ctx context.Context, code string) (*dto.LicenseDetail, error)
}

type listLicenseAuditUseCase interface {
	Execute(ctx context.Context, code string, limit int) ([]*dto.AuditEntryDTO, error)
}

type sendLicenseEmailUseCase interface {
	Execute(ctx context.Context, cmd usecases.SendLicenseEmailCommand) error
}
