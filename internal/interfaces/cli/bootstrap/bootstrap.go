// Package bootstrap loads configuration and process-wide singletons for
// the CLI commands.
package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"github.com/orris-inc/licensor/internal/infrastructure/config"
	"github.com/orris-inc/licensor/internal/infrastructure/database"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/constants"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

// ResolveEnv lets the ENV variable override the --env flag.
func ResolveEnv(flag string) string {
	if envVar := os.Getenv("ENV"); envVar != "" {
		return envVar
	}
	return flag
}

// LoadConfig loads configuration, the logger and the business timezone.
func LoadConfig(env, configPath string) (*config.Config, logger.Interface, error) {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, strings.EqualFold(env, constants.EnvDevelopment)); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

// Init is LoadConfig plus the process-wide database connection. Callers
// close it with database.Close.
func Init(env, configPath string) (*config.Config, logger.Interface, error) {
	cfg, log, err := LoadConfig(env, configPath)
	if err != nil {
		return nil, nil, err
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, log, nil
}

// GinMode maps an environment name to a gin mode.
func GinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
