package http

import (
	"context"

	"github.com/orris-inc/licensor/internal/interfaces/http/handlers"
	"github.com/orris-inc/licensor/internal/interfaces/http/middleware"
)

// allHandlers holds all HTTP handler instances.
type allHandlers struct {
	licenseHandler *handlers.LicenseHandler
	paymentHandler *handlers.PaymentHandler
	healthHandler  *handlers.HealthHandler
}

// ============================================================
// Section 3: Handlers and middlewares
// ============================================================

func (c *Container) initHandlers() {
	log := c.log
	ucs := c.ucs

	checks := map[string]handlers.HealthChecker{
		"database": handlers.HealthCheckerFunc(c.pingDatabase),
	}
	if c.redis != nil {
		checks["redis"] = handlers.HealthCheckerFunc(func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		})
	}

	c.hdlrs = &allHandlers{
		licenseHandler: handlers.NewLicenseHandler(
			ucs.VerifyLicense,
			ucs.GenerateLicense,
			ucs.RevokeLicense,
			ucs.RenewLicense,
			ucs.GetLicense,
			ucs.ListLicenseAudit,
			ucs.SendLicenseEmail,
			log.Named("license_handler"),
		),
		paymentHandler: handlers.NewPaymentHandler(c.svcs.gateway, ucs.HandlePayment, log.Named("payment_handler")),
		healthHandler:  handlers.NewHealthHandler(checks, log.Named("health")),
	}

	c.adminAuthMiddleware = middleware.NewAdminAuthMiddleware(c.cfg.Admin.Token, c.svcs.jwtService, log.Named("admin_auth"))
	if c.svcs.verifyLimiter != nil {
		c.verifyLimiter = middleware.RateLimit(c.svcs.verifyLimiter, "verify", log.Named("ratelimit"))
	}
}
