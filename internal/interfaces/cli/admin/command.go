package admin

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/licensor/internal/infrastructure/auth"
	"github.com/orris-inc/licensor/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative credentials",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(newTokenCommand())

	return cmd
}

func newTokenCommand() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin bearer token",
		Long:  `Issue a JWT with the admin role signed with admin.jwt_secret.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap.LoadConfig(bootstrap.ResolveEnv(env), configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			token, expiresAt, err := auth.NewJWTService(cfg.Admin.JWTSecret, cfg.Admin.JWTExpMinutes).Issue(subject)
			if err != nil {
				return err
			}

			log.Infow("issued admin token", "subject", subject, "expires_at", expiresAt)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "operator", "Subject recorded in the token")

	return cmd
}
