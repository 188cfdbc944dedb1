package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensor/internal/infrastructure/auth"
	"github.com/orris-inc/licensor/internal/shared/constants"
	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

// staticTokenSubject is recorded for requests authenticated by the shared admin token.
const staticTokenSubject = "static-token"

type AdminAuthMiddleware struct {
	token      []byte
	jwtService *auth.JWTService
	logger     logger.Interface
}

// NewAdminAuthMiddleware accepts either the static X-Admin-Token or a bearer
// JWT carrying the admin role. With neither configured every request is refused.
func NewAdminAuthMiddleware(token string, jwtService *auth.JWTService, logger logger.Interface) *AdminAuthMiddleware {
	if token == "" && (jwtService == nil || !jwtService.Enabled()) {
		logger.Warnw("admin API has no credentials configured, all admin requests will be rejected")
	}
	return &AdminAuthMiddleware{
		token:      []byte(token),
		jwtService: jwtService,
		logger:     logger,
	}
}

func (m *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if presented := c.GetHeader(constants.HeaderXAdminToken); presented != "" {
			if len(m.token) == 0 || subtle.ConstantTimeCompare([]byte(presented), m.token) != 1 {
				m.logger.Warnw("rejected admin token", "client_ip", c.ClientIP(), "path", c.Request.URL.Path)
				utils.ErrorResponseWithError(c, errors.NewTokenInvalidError("admin token"))
				c.Abort()
				return
			}
			c.Set(constants.ContextKeyAdminSub, staticTokenSubject)
			c.Next()
			return
		}

		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponseWithError(c, errors.NewCredentialsMissingError())
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || m.jwtService == nil {
			utils.ErrorResponseWithError(c, errors.NewTokenInvalidError("admin token"))
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify admin token", "client_ip", c.ClientIP(), "error", err)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAdminSub, claims.Subject)
		c.Next()
	}
}
