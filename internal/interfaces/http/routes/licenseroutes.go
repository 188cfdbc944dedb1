package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensor/internal/interfaces/http/handlers"
	"github.com/orris-inc/licensor/internal/interfaces/http/middleware"
)

// LicenseRouteConfig holds dependencies for license routes.
type LicenseRouteConfig struct {
	LicenseHandler      *handlers.LicenseHandler
	AdminAuthMiddleware *middleware.AdminAuthMiddleware
	// VerifyLimiter is nil when rate limiting is disabled.
	VerifyLimiter gin.HandlerFunc
}

// SetupLicenseRoutes configures license routes.
func SetupLicenseRoutes(api *gin.RouterGroup, cfg *LicenseRouteConfig) {
	licenses := api.Group("/licenses")
	{
		verify := []gin.HandlerFunc{cfg.LicenseHandler.VerifyLicense}
		if cfg.VerifyLimiter != nil {
			verify = append([]gin.HandlerFunc{cfg.VerifyLimiter}, verify...)
		}
		licenses.POST("/verify", verify...)

		licensesAdmin := licenses.Group("")
		licensesAdmin.Use(cfg.AdminAuthMiddleware.RequireAdmin())
		{
			licensesAdmin.POST("", cfg.LicenseHandler.GenerateLicense)
			licensesAdmin.GET("/:code", cfg.LicenseHandler.GetLicense)
			licensesAdmin.GET("/:code/audit", cfg.LicenseHandler.ListLicenseAudit)
			licensesAdmin.POST("/:code/revoke", cfg.LicenseHandler.RevokeLicense)
			licensesAdmin.POST("/:code/renew", cfg.LicenseHandler.RenewLicense)
			licensesAdmin.POST("/:code/email", cfg.LicenseHandler.SendLicenseEmail)
		}
	}
}
