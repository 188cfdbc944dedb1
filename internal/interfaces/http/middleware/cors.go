package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensor/internal/shared/constants"
)

var (
	corsAllowHeaders = strings.Join([]string{
		constants.HeaderContentType,
		constants.HeaderAuthorization,
		constants.HeaderXAdminToken,
		constants.HeaderXRequestID,
		HeaderAPIVersion,
		"Accept",
	}, ", ")
	corsExposeHeaders = strings.Join([]string{
		constants.HeaderXRequestID,
		HeaderAPIVersion,
		"X-RateLimit-Remaining",
		"Retry-After",
	}, ", ")
)

// CORS lets the listed admin console origins call the API. "*" allows any
// origin; credentials travel in headers, never cookies.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAny := slices.Contains(allowedOrigins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		c.Header("Vary", "Origin")

		if origin != "" && (allowAny || slices.Contains(allowedOrigins, origin)) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityHeaders is applied to the JSON API only; the swagger UI needs inline scripts.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("Cache-Control", "no-store")

		c.Next()
	}
}
