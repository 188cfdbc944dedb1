package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/licensor/internal/interfaces/cli/admin"
	"github.com/orris-inc/licensor/internal/interfaces/cli/license"
	"github.com/orris-inc/licensor/internal/interfaces/cli/migrate"
	"github.com/orris-inc/licensor/internal/interfaces/cli/server"
	"github.com/orris-inc/licensor/internal/interfaces/cli/version"
	"github.com/orris-inc/licensor/internal/interfaces/cli/worker"
)

// @title                      Licensor API
// @version                    1.0
// @description                License issuance, verification and device binding.
// @BasePath                   /api/v1
// @securityDefinitions.apikey AdminToken
// @in                         header
// @name                       X-Admin-Token
// @securityDefinitions.apikey Bearer
// @in                         header
// @name                       Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:   "licensor",
		Short: "Licensor - license issuance and verification service",
		Long:  `Licensor issues license codes, verifies them against bound devices and provisions licenses from payment webhooks.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		migrate.NewCommand(),
		license.NewCommand(),
		admin.NewCommand(),
		version.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
