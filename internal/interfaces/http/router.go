package http

import (
	"fmt"

	"github.com/orris-inc/licensor/internal/interfaces/http/middleware"
	"github.com/orris-inc/licensor/internal/interfaces/http/routes"
	"github.com/orris-inc/licensor/internal/shared/constants"

	_ "github.com/orris-inc/licensor/docs"
)

// ============================================================
// Section 4: Routes
// ============================================================

func (c *Container) setupRoutes() error {
	if err := c.engine.SetTrustedProxies(c.cfg.Server.TrustedProxies); err != nil {
		return fmt.Errorf("invalid server.trusted_proxies: %w", err)
	}

	c.engine.Use(
		middleware.RequestID(),
		middleware.Logger(c.log.Named("http"), c.metrics),
		middleware.Recovery(c.log.Named("recovery")),
	)
	if len(c.cfg.Server.AllowedOrigins) > 0 {
		c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	}

	api := c.engine.Group(constants.APIVersionPrefix)
	api.Use(middleware.SecurityHeaders(), middleware.APIVersion())

	routes.SetupSystemRoutes(c.engine, api, &routes.SystemRouteConfig{
		HealthHandler:  c.hdlrs.healthHandler,
		MetricsHandler: c.metrics.Handler(),
	})

	routes.SetupLicenseRoutes(api, &routes.LicenseRouteConfig{
		LicenseHandler:      c.hdlrs.licenseHandler,
		AdminAuthMiddleware: c.adminAuthMiddleware,
		VerifyLimiter:       c.verifyLimiter,
	})

	routes.SetupPaymentRoutes(api, &routes.PaymentRouteConfig{
		PaymentHandler: c.hdlrs.paymentHandler,
	})

	return nil
}
