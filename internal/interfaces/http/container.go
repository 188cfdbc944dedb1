package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/licensor/internal/infrastructure/config"
	"github.com/orris-inc/licensor/internal/infrastructure/metrics"
	"github.com/orris-inc/licensor/internal/interfaces/http/middleware"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

// Container holds the infrastructure components, repositories, use cases
// and handlers of one process, wired together once at startup. The CLI
// builds the same container and uses only its use cases.
type Container struct {
	// Core infrastructure
	engine  *gin.Engine
	db      *gorm.DB
	cfg     *config.Config
	log     logger.Interface
	redis   *redis.Client
	clock   biztime.Clock
	metrics *metrics.Metrics

	repos *repositories
	svcs  *services
	ucs   *UseCases
	hdlrs *allHandlers

	// Middlewares
	adminAuthMiddleware *middleware.AdminAuthMiddleware
	verifyLimiter       gin.HandlerFunc
}

// NewContainer creates a Container with all dependencies wired together.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine:  gin.New(),
		db:      db,
		cfg:     cfg,
		log:     log,
		clock:   biztime.SystemClock{},
		metrics: metrics.New(),
	}

	// Section 1: Infrastructure - Redis, Repositories, Services
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Use cases
	c.initUseCases()

	// Section 3: Handlers and middlewares
	c.initHandlers()

	// Section 4: Routes
	if err := c.setupRoutes(); err != nil {
		c.Shutdown()
		return nil, err
	}

	return c, nil
}

// Engine returns the configured gin engine.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// UseCases exposes the application layer to the CLI and worker.
func (c *Container) UseCases() *UseCases {
	return c.ucs
}

func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Shutdown releases connections owned by the container. The database is
// owned by the caller and stays open.
func (c *Container) Shutdown() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
		c.redis = nil
	}
}

func (c *Container) pingDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
