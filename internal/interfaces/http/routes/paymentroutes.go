package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensor/internal/interfaces/http/handlers"
)

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler *handlers.PaymentHandler
}

// SetupPaymentRoutes configures payment routes. The webhook authenticates
// by signature, not by admin credentials.
func SetupPaymentRoutes(api *gin.RouterGroup, cfg *PaymentRouteConfig) {
	payments := api.Group("/payments")
	{
		payments.GET("/webhook", cfg.PaymentHandler.HandleWebhook)
		payments.POST("/webhook", cfg.PaymentHandler.HandleWebhook)
	}
}
