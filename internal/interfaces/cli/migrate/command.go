package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/orris-inc/licensor/internal/infrastructure/database"
	"github.com/orris-inc/licensor/internal/infrastructure/migration"
	"github.com/orris-inc/licensor/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/licensor/internal/shared/config"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

// scriptsRoot is where new migrations are written, relative to the repository root.
const scriptsRoot = "./internal/infrastructure/migration/scripts"

var (
	env        string
	configPath string
	tool       string
	name       string
	steps      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().StringVarP(&tool, "tool", "t", migration.ToolGoose, "Migration tool (goose, migrate, auto)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and status of the database.`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create new migration files with the specified name for the configured driver.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func initStrategy() (migration.Strategy, logger.Interface, error) {
	cfg, log, err := bootstrap.Init(bootstrap.ResolveEnv(env), configPath)
	if err != nil {
		return nil, nil, err
	}

	strategy, err := migration.NewStrategy(tool, cfg.Database.Driver, log)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return strategy, log, nil
}

func reversible(strategy migration.Strategy, op string) (migration.Reversible, error) {
	r, ok := strategy.(migration.Reversible)
	if !ok {
		return nil, fmt.Errorf("%s is not supported with %s", op, strategy.GetName())
	}
	return r, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	strategy, log, err := initStrategy()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	log.Infow("running up migrations", "environment", env, "strategy", strategy.GetName())

	if err := migration.NewManagerWithStrategy(strategy, log).Migrate(database.Get()); err != nil {
		return err
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	strategy, log, err := initStrategy()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	r, err := reversible(strategy, "down migration")
	if err != nil {
		return err
	}

	log.Infow("running down migrations", "environment", env, "steps", steps)

	if err := r.MigrateDown(database.Get(), steps); err != nil {
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	strategy, log, err := initStrategy()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	r, err := reversible(strategy, "status check")
	if err != nil {
		return err
	}

	version, dirty, err := r.GetVersion(database.Get())
	if err != nil {
		log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMigration Status:\n")
	fmt.Fprintf(out, "  Environment:     %s\n", env)
	fmt.Fprintf(out, "  Tool:            %s\n", strategy.GetName())
	fmt.Fprintf(out, "  Current Version: %d\n", version)
	fmt.Fprintf(out, "  Dirty:           %t\n", dirty)

	if goose, ok := strategy.(*migration.GooseStrategy); ok {
		if err := goose.Status(database.Get()); err != nil {
			log.Errorw("failed to get detailed status", "error", err)
			return fmt.Errorf("failed to get detailed status: %w", err)
		}
	}

	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.LoadConfig(bootstrap.ResolveEnv(env), configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dir, err := createDir(tool, cfg.Database.Driver)
	if err != nil {
		return err
	}

	log.Infow("creating new migration", "name", name, "tool", tool, "dir", dir)

	switch tool {
	case migration.ToolGoose:
		if err := migration.NewGooseStrategy(cfg.Database.Driver, log).Create(dir, name); err != nil {
			return err
		}
	case migration.ToolMigrate:
		up, down, err := migration.NewGenerator(dir, log).CreateMigration(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", up, down)
	default:
		return fmt.Errorf("create is not supported with tool %q", tool)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migration '%s' created in %s\n", name, dir)
	return nil
}

func createDir(tool, driver string) (string, error) {
	switch driver {
	case config.DriverMySQL, config.DriverPostgres, config.DriverSQLite:
	default:
		return "", fmt.Errorf("no migration scripts for driver %q", driver)
	}
	return filepath.Abs(filepath.Join(scriptsRoot, tool, driver))
}
