package http

import (
	"gorm.io/gorm"

	"github.com/orris-inc/licensor/internal/domain/audit"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/domain/payment"
	"github.com/orris-inc/licensor/internal/infrastructure/repository"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	licenseRepo license.Repository
	auditRepo   audit.Repository
	paymentRepo payment.TransactionRepository
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		licenseRepo: repository.NewLicenseRepository(db, log.Named("license_repository")),
		auditRepo:   repository.NewAuditLogRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
	}
}
