package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensor/internal/infrastructure/ratelimit"
	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

// RateLimit enforces limiter per client IP under the given key scope. A
// limiter backend failure lets the request through.
func RateLimit(limiter ratelimit.RateLimiter, scope string, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		decision, err := limiter.Allow(c.Request.Context(), scope+":"+clientIP)
		if err != nil {
			log.Warnw("rate limiter unavailable, allowing request",
				"scope", scope,
				"client_ip", clientIP,
				"error", err,
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			log.Infow("rate limit exceeded", "scope", scope, "client_ip", clientIP)
			utils.ErrorResponseWithError(c, errors.NewTooManyRequestsError("rate limit exceeded, please try again later"))
			c.Abort()
			return
		}

		c.Next()
	}
}
