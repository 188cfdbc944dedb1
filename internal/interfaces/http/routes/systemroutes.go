package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/orris-inc/licensor/internal/interfaces/http/handlers"
)

// SystemRouteConfig holds dependencies for health, metrics and docs routes.
type SystemRouteConfig struct {
	HealthHandler  *handlers.HealthHandler
	MetricsHandler http.Handler
}

// SetupSystemRoutes configures health under the API prefix and the
// metrics and swagger endpoints at the root.
func SetupSystemRoutes(engine *gin.Engine, api *gin.RouterGroup, cfg *SystemRouteConfig) {
	api.GET("/health", cfg.HealthHandler.HealthCheck)

	if cfg.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
