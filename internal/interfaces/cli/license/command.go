// Package license holds the operator commands for managing licenses
// without going through the HTTP API.
package license

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/orris-inc/licensor/internal/application/license/usecases"
	"github.com/orris-inc/licensor/internal/infrastructure/database"
	httpRouter "github.com/orris-inc/licensor/internal/interfaces/http"
	"github.com/orris-inc/licensor/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

// cliClientIP marks audit entries written by operator commands.
const cliClientIP = "cli"

const (
	outputYAML = "yaml"
	outputJSON = "json"
)

var (
	env        string
	configPath string
	output     string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Manage licenses",
		Long:  `Generate, inspect, revoke, renew and repair licenses directly against the store.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", outputYAML, "Output format (yaml, json)")

	cmd.AddCommand(
		newGenerateCommand(),
		newRevokeCommand(),
		newRenewCommand(),
		newInfoCommand(),
		newAuditCommand(),
		newEmailCommand(),
		newRepairCommand(),
	)

	return cmd
}

// withUseCases wires the application layer and runs fn under a context
// cancelled on SIGINT or SIGTERM.
func withUseCases(fn func(ctx context.Context, ucs *httpRouter.UseCases) error) error {
	if output != outputYAML && output != outputJSON {
		return fmt.Errorf("unsupported output format %q", output)
	}

	cfg, log, err := bootstrap.Init(bootstrap.ResolveEnv(env), configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	gin.SetMode(gin.ReleaseMode)

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return err
	}
	defer container.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return fn(ctx, container.UseCases())
}

func printResult(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

// optionalDays returns nil unless the flag was given.
func optionalDays(cmd *cobra.Command, days int) *int {
	if !cmd.Flags().Changed("days") {
		return nil
	}
	return &days
}

func newGenerateCommand() *cobra.Command {
	var (
		planID   string
		days     int
		quantity int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate licenses",
		Long:  `Generate one or more licenses for a plan. Without --days the license never expires.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUseCases(func(ctx context.Context, ucs *httpRouter.UseCases) error {
				records, err := ucs.GenerateLicense.ExecuteBatch(ctx, usecases.GenerateLicenseCommand{
					PlanID:       planID,
					ValidityDays: optionalDays(cmd, days),
					ClientIP:     cliClientIP,
				}, quantity)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), output, records)
			})
		},
	}

	cmd.Flags().StringVarP(&planID, "plan", "p", "", "Plan identifier (required)")
	cmd.Flags().IntVarP(&days, "days", "d", 0, "Validity in days")
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "Number of licenses to generate (1-100)")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func newRevokeCommand() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "revoke <code>",
		Short: "Revoke a license",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUseCases(func(ctx context.Context, ucs *httpRouter.UseCases) error {
				revoked, err := ucs.RevokeLicense.Execute(ctx, usecases.RevokeLicenseCommand{
					Code:     args[0],
					ClientIP: cliClientIP,
					Reason:   reason,
				})
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), output, map[string]bool{"revoked": revoked})
			})
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Reason recorded in the audit log")

	return cmd
}

func newRenewCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "renew <code>",
		Short: "Replace a license with a fresh one on the same plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUseCases(func(ctx context.Context, ucs *httpRouter.UseCases) error {
				record, err := ucs.RenewLicense.Execute(ctx, usecases.RenewLicenseCommand{
					Code:         args[0],
					ValidityDays: optionalDays(cmd, days),
					ClientIP:     cliClientIP,
				})
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), output, record)
			})
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "Validity in days")

	return cmd
}

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <code>",
		Short: "Show a license",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUseCases(func(ctx context.Context, ucs *httpRouter.UseCases) error {
				detail, err := ucs.GetLicense.Execute(ctx, args[0])
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), output, detail)
			})
		},
	}
}

func newAuditCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit <code>",
		Short: "Show the audit trail of a license",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUseCases(func(ctx context.Context, ucs *httpRouter.UseCases) error {
				entries, err := ucs.ListLicenseAudit.Execute(ctx, args[0], limit)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), output, entries)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum number of entries")

	return cmd
}

func newEmailCommand() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "email <code>",
		Short: "Send a license to a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUseCases(func(ctx context.Context, ucs *httpRouter.UseCases) error {
				if err := ucs.SendLicenseEmail.Execute(ctx, usecases.SendLicenseEmailCommand{
					Code:  args[0],
					Email: to,
				}); err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), output, map[string]string{"sent_to": to})
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient address (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newRepairCommand() *cobra.Command {
	var (
		code   string
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Rebuild missing license hashes",
		Long: `Rebuild the hash of every license stored without one. With --verify the
stored hashes are also checked and mismatches reported; they are never replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUseCases(func(ctx context.Context, ucs *httpRouter.UseCases) error {
				report, err := ucs.RepairLicenseHashes.Execute(ctx, usecases.RepairLicenseHashesCommand{
					Code:           code,
					VerifyExisting: verify,
				})
				if err != nil {
					return err
				}
				if err := printResult(cmd.OutOrStdout(), output, report); err != nil {
					return err
				}
				if len(report.Failed) > 0 {
					return fmt.Errorf("%d license(s) could not be repaired", len(report.Failed))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Only inspect this license")
	cmd.Flags().BoolVar(&verify, "verify", false, "Also verify existing hashes")

	return cmd
}
