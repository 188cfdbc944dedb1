package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensor/internal/infrastructure/metrics"
	"github.com/orris-inc/licensor/internal/infrastructure/ratelimit"
	"github.com/orris-inc/licensor/internal/shared/constants"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.ContextKeyRequestID))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(constants.HeaderXRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderXRequestID, "upstream-42")
	w = serve(r, req)
	assert.Equal(t, "upstream-42", w.Header().Get(constants.HeaderXRequestID))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderXRequestID, strings.Repeat("x", 500))
	w = serve(r, req)
	assert.Len(t, w.Header().Get(constants.HeaderXRequestID), 36)
}

func TestRateLimit_BlocksAfterBudget(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.Config{Window: time.Minute, MaxRequests: 5})

	r := gin.New()
	r.POST("/verify", RateLimit(limiter, "verify", logger.NewNopLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	newReq := func(ip string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/verify", nil)
		req.RemoteAddr = ip + ":40000"
		return req
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, newReq("198.51.100.1")).Code, "request %d", i+1)
	}

	w := serve(r, newReq("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(r, newReq("198.51.100.2")).Code, "other clients keep their own budget")
}

func TestRecovery_ReturnsJSON500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.NewNopLogger()))
	r.GET("/boom", func(c *gin.Context) {
		panic("unexpected")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(constants.HeaderXAdminToken, "s3cret")
	w := serve(r, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestLogger_RecordsRoutePattern(t *testing.T) {
	m := metrics.New()

	r := gin.New()
	r.Use(Logger(logger.NewNopLogger(), m))
	r.GET("/licenses/:code", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/licenses/0123456789abcdef", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	w := serve(m.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)

	exposition := string(body)
	assert.Contains(t, exposition, `route="/licenses/:code"`)
	assert.Contains(t, exposition, `route="unmatched"`)
	assert.NotContains(t, exposition, "0123456789abcdef")
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://console.example.com"}))
	r.POST("/licenses", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/licenses", nil)
	req.Header.Set("Origin", "https://console.example.com")
	w := serve(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://console.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/licenses", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://any.example.com")
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://any.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), constants.HeaderXAdminToken)
}

func TestAPIVersion(t *testing.T) {
	r := gin.New()
	r.Use(APIVersion())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get(HeaderAPIVersion))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept", "application/vnd.licensor.v1+json")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderAPIVersion, "2")
	w = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept", "application/vnd.licensor.v3+json")
	w = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
