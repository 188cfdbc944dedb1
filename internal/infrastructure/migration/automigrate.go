package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/licensor/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

// GormAutoMigrateStrategy derives the schema from the persistence models.
// Development only: it never drops columns or rewrites indexes.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{logger: log.With("component", "migration.automigrate")}
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	all := models.All()
	if err := db.AutoMigrate(all...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	s.logger.Infow("auto migration completed", "models_count", len(all))
	return nil
}
