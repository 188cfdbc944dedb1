package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensor/internal/infrastructure/auth"
	"github.com/orris-inc/licensor/internal/shared/constants"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAdminEngine(mw *AdminAuthMiddleware) *gin.Engine {
	r := gin.New()
	r.GET("/admin", mw.RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.ContextKeyAdminSub))
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth_StaticToken(t *testing.T) {
	r := newAdminEngine(NewAdminAuthMiddleware("s3cret", nil, logger.NewNopLogger()))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(constants.HeaderXAdminToken, "s3cret")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, staticTokenSubject, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(constants.HeaderXAdminToken, "wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestAdminAuth_StaticTokenNotConfigured(t *testing.T) {
	r := newAdminEngine(NewAdminAuthMiddleware("", nil, logger.NewNopLogger()))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(constants.HeaderXAdminToken, "")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(constants.HeaderXAdminToken, "anything")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestAdminAuth_BearerJWT(t *testing.T) {
	jwtService := auth.NewJWTService("jwt-secret", 5)
	r := newAdminEngine(NewAdminAuthMiddleware("", jwtService, logger.NewNopLogger()))

	token, _, err := jwtService.Issue("ops@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops@example.com", w.Body.String())
}

func TestAdminAuth_BearerRejected(t *testing.T) {
	other := auth.NewJWTService("other-secret", 5)
	foreign, _, err := other.Issue("intruder")
	require.NoError(t, err)

	r := newAdminEngine(NewAdminAuthMiddleware("", auth.NewJWTService("jwt-secret", 5), logger.NewNopLogger()))

	cases := map[string]string{
		"missing":       "",
		"wrong scheme":  "Basic abc",
		"garbage":       "Bearer not-a-jwt",
		"foreign token": "Bearer " + foreign,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if header != "" {
				req.Header.Set(constants.HeaderAuthorization, header)
			}
			assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
		})
	}
}
