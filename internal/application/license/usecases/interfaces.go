package usecases

import (
	"context"

	"github.com/orris-inc/licensor/internal/application/auditlog"
	"github.com/orris-inc/licensor/internal/application/license/dto"
	"github.com/orris-inc/licensor/internal/domain/audit"
)

// AuditAppender is the best-effort side of the audit log.
type AuditAppender interface {
	Append(ctx context.Context, rec auditlog.Record)
}

// AuditQuerier reads a license's audit trail.
type AuditQuerier interface {
	Query(ctx context.Context, licenseID string, limit int) ([]*audit.Entry, error)
}

// TransactionRunner runs fn in one store transaction; a non-nil error rolls back.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type GenerateLicenseExecutor interface {
	Execute(ctx context.Context, cmd GenerateLicenseCommand) (*dto.LicenseRecord, error)
}

type RevokeLicenseExecutor interface {
	Execute(ctx context.Context, cmd RevokeLicenseCommand) (bool, error)
}
