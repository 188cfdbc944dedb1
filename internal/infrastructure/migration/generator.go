package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/orris-inc/licensor/internal/shared/logger"
)

// Generator creates golang-migrate up/down pairs on disk.
type Generator struct {
	scriptsPath string
	logger      logger.Interface
	now         func() time.Time
}

func NewGenerator(scriptsPath string, log logger.Interface) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		logger:      log.With("component", "migration.generator"),
		now:         time.Now,
	}
}

// CreateMigration writes <timestamp>_<name>.up.sql and .down.sql and returns their paths.
func (g *Generator) CreateMigration(name string) (string, string, error) {
	if name == "" {
		return "", "", fmt.Errorf("migration name is required")
	}

	now := g.now()
	timestamp := now.Format("20060102150405")
	upFilePath := filepath.Join(g.scriptsPath, fmt.Sprintf("%s_%s.up.sql", timestamp, name))
	downFilePath := filepath.Join(g.scriptsPath, fmt.Sprintf("%s_%s.down.sql", timestamp, name))

	if err := os.MkdirAll(g.scriptsPath, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create scripts directory: %w", err)
	}

	created := now.Format(time.DateTime)
	up := fmt.Sprintf("-- Migration: %s\n-- Created: %s\n\n", name, created)
	down := fmt.Sprintf("-- Rollback Migration: %s\n-- Created: %s\n\n", name, created)

	if err := os.WriteFile(upFilePath, []byte(up), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to create up migration file: %w", err)
	}
	if err := os.WriteFile(downFilePath, []byte(down), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to create down migration file: %w", err)
	}

	g.logger.Infow("migration files created successfully",
		"up_file", upFilePath,
		"down_file", downFilePath)
	return upFilePath, downFilePath, nil
}
