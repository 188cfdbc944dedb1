package http

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orris-inc/licensor/internal/infrastructure/config"
	"github.com/orris-inc/licensor/internal/infrastructure/payment"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/testdb"
	sharedConfig "github.com/orris-inc/licensor/internal/shared/config"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

const (
	testAdminToken  = "admin-secret"
	testMerchantKey = "merchant-secret"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: sharedConfig.ServerConfig{Mode: "test", Timezone: "UTC"},
		License: sharedConfig.LicenseConfig{
			MasterKey:           "test-master-key",
			CodeBytes:           24,
			MaxDevices:          2,
			DefaultValidityDays: 365,
			MaxFailedAttempts:   5,
			LockoutDuration:     10 * time.Minute,
			KDF: sharedConfig.KDFConfig{
				TimeCost:    1,
				MemoryCost:  64,
				Parallelism: 1,
				KeyLength:   32,
				SaltLength:  16,
			},
		},
		Payment: sharedConfig.PaymentConfig{
			MerchantID:       "1001",
			MerchantKey:      testMerchantKey,
			LockBackend:      sharedConfig.LockBackendMemory,
			LockTimeout:      time.Second,
			LockPollInterval: 5 * time.Millisecond,
		},
		RateLimit: sharedConfig.RateLimitConfig{Enabled: true, Window: time.Minute, MaxRequests: 5},
		Admin:     sharedConfig.AdminConfig{Token: testAdminToken, JWTSecret: "jwt-secret", JWTExpMinutes: 5},
	}
}

func newTestContainer(t *testing.T, cfg *config.Config) (*Container, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	c, err := NewContainer(db, cfg, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	return c, db
}

func serve(c *Container, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	c.Engine().ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type string `json:"type"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestContainer_GenerateAndVerify(t *testing.T) {
	c, _ := newTestContainer(t, testConfig())
	admin := map[string]string{"X-Admin-Token": testAdminToken}

	w := serve(c, nethttp.MethodPost, "/api/v1/licenses", `{"plan_id":"pro","validity_days":30}`, admin)
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())

	var record struct {
		LicenseID string `json:"license_id"`
		Code      string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &record))
	require.NotEmpty(t, record.Code)

	verify := `{"code":"` + record.Code + `","device_id":"device-1"}`
	w = serve(c, nethttp.MethodPost, "/api/v1/licenses/verify", verify, nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())

	var info struct {
		LicenseID   string `json:"license_id"`
		DeviceCount int    `json:"device_count"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &info))
	assert.Equal(t, record.LicenseID, info.LicenseID)
	assert.Equal(t, 1, info.DeviceCount)

	w = serve(c, nethttp.MethodGet, "/api/v1/licenses/"+record.Code+"/audit", "", admin)
	require.Equal(t, nethttp.StatusOK, w.Code)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &entries))
	assert.Len(t, entries, 2)

	w = serve(c, nethttp.MethodPost, "/api/v1/licenses/"+record.Code+"/revoke", "", admin)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.JSONEq(t, `{"revoked":true}`, string(decode(t, w).Data))

	w = serve(c, nethttp.MethodPost, "/api/v1/licenses/verify", verify, nil)
	assert.Equal(t, nethttp.StatusForbidden, w.Code)
	assert.Equal(t, "revoked", decode(t, w).Error.Type)
}

func TestContainer_AdminRoutesRequireCredentials(t *testing.T) {
	c, _ := newTestContainer(t, testConfig())

	w := serve(c, nethttp.MethodPost, "/api/v1/licenses", `{"plan_id":"pro"}`, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)

	w = serve(c, nethttp.MethodPost, "/api/v1/licenses", `{"plan_id":"pro"}`, map[string]string{"X-Admin-Token": "wrong"})
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)

	token, _, err := c.svcs.jwtService.Issue("ops")
	require.NoError(t, err)
	w = serve(c, nethttp.MethodPost, "/api/v1/licenses", `{"plan_id":"pro"}`, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, nethttp.StatusCreated, w.Code)
}

func TestContainer_VerifyIsRateLimited(t *testing.T) {
	c, _ := newTestContainer(t, testConfig())
	body := `{"code":"unknown","device_id":"device-1"}`

	for i := 0; i < 5; i++ {
		w := serve(c, nethttp.MethodPost, "/api/v1/licenses/verify", body, nil)
		require.Equal(t, nethttp.StatusForbidden, w.Code)
		assert.Equal(t, "not_found", decode(t, w).Error.Type)
	}

	w := serve(c, nethttp.MethodPost, "/api/v1/licenses/verify", body, nil)
	assert.Equal(t, nethttp.StatusTooManyRequests, w.Code)
}

func TestContainer_RateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = false
	c, _ := newTestContainer(t, cfg)
	body := `{"code":"unknown","device_id":"device-1"}`

	for i := 0; i < 10; i++ {
		w := serve(c, nethttp.MethodPost, "/api/v1/licenses/verify", body, nil)
		require.Equal(t, nethttp.StatusForbidden, w.Code)
	}
}

func TestContainer_PaymentWebhookProvisionsOnce(t *testing.T) {
	c, db := newTestContainer(t, testConfig())

	params := map[string]string{
		"pid":          "1001",
		"trade_no":     "2024010100001",
		"out_trade_no": "order-42",
		"type":         "alipay",
		"name":         "Pro yearly",
		"money":        "99.00",
		"trade_status": "TRADE_SUCCESS",
		"param":        `{"email":"buyer@example.com","plan_type":"pro_yearly"}`,
		"sign_type":    "MD5",
	}
	params["sign"] = payment.Sign(params, testMerchantKey)
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	for i := 0; i < 2; i++ {
		w := serve(c, nethttp.MethodGet, "/api/v1/payments/webhook?"+values.Encode(), "", nil)
		require.Equal(t, nethttp.StatusOK, w.Code)
		assert.Equal(t, "success", w.Body.String())
	}

	var licenses, payments int64
	require.NoError(t, db.Model(&models.LicenseModel{}).Count(&licenses).Error)
	require.NoError(t, db.Model(&models.PaymentModel{}).Count(&payments).Error)
	assert.EqualValues(t, 1, licenses)
	assert.EqualValues(t, 1, payments)

	values.Set("money", "0.01")
	w := serve(c, nethttp.MethodGet, "/api/v1/payments/webhook?"+values.Encode(), "", nil)
	assert.Equal(t, "success", w.Body.String())
	require.NoError(t, db.Model(&models.LicenseModel{}).Count(&licenses).Error)
	assert.EqualValues(t, 1, licenses)
}

func TestContainer_SystemRoutes(t *testing.T) {
	c, _ := newTestContainer(t, testConfig())

	w := serve(c, nethttp.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	serve(c, nethttp.MethodPost, "/api/v1/licenses/verify", `{"code":"x","device_id":"d"}`, nil)

	w = serve(c, nethttp.MethodGet, "/metrics", "", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "licensor_")
}

func TestContainer_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Server().Addr().Port

	cfg := testConfig()
	cfg.Redis = sharedConfig.RedisConfig{Enabled: true, Host: host, Port: port}
	cfg.Payment.LockBackend = sharedConfig.LockBackendRedis
	cfg.Payment.LockTTL = time.Minute
	cfg.Cache.VerificationTTL = time.Minute

	c, _ := newTestContainer(t, cfg)
	require.NotNil(t, c.redis)
	require.NotNil(t, c.svcs.verificationCache)

	w := serve(c, nethttp.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"ok"`)
}

func TestContainer_RedisLockWithoutRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Payment.LockBackend = sharedConfig.LockBackendRedis

	_, err := NewContainer(testdb.Open(t), cfg, logger.NewNopLogger())
	assert.Error(t, err)
}
