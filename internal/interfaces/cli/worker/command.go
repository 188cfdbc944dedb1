package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/orris-inc/licensor/internal/infrastructure/database"
	"github.com/orris-inc/licensor/internal/infrastructure/scheduler"
	httpRouter "github.com/orris-inc/licensor/internal/interfaces/http"
	"github.com/orris-inc/licensor/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

var (
	env         string
	configPath  string
	once        bool
	metricsAddr string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run background jobs",
		Long:  `Retry license provisioning for paid transactions whose webhook never finished.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&once, "once", false, "Process one batch and exit")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	env = bootstrap.ResolveEnv(env)

	cfg, log, err := bootstrap.Init(env, configPath)
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

	job := container.UseCases().RetryProvisioning

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if once {
		n, err := job.Execute(ctx)
		if err != nil {
			return fmt.Errorf("provisioning retry failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "provisioned %d transaction(s)\n", n)
		return nil
	}

	log.Infow("starting worker", "environment", env, "interval", cfg.Payment.RetryInterval)

	g, gctx := errgroup.WithContext(ctx)

	sched := scheduler.NewProvisioningScheduler(job, cfg.Payment.RetryInterval, log.Named("provisioning_scheduler"))
	g.Go(func() error {
		sched.Start(gctx)
		<-gctx.Done()
		sched.Stop()
		return nil
	})

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           container.Metrics().Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Infow("serving worker metrics", "address", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Errorw("worker stopped with error", "error", err)
		return err
	}

	log.Infow("worker stopped")
	return nil
}
