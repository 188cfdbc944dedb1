package payment

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensor/internal/application/payment/paymentgateway"
	apperrors "github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

const testKey = "merchant-secret"

func signedValues(overrides map[string]string) url.Values {
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
	for k, v := range overrides {
		params[k] = v
	}
	params["sign"] = Sign(params, testKey)

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values
}

func TestSign_IgnoresEmptyAndSignFields(t *testing.T) {
	base := map[string]string{"b": "2", "a": "1"}
	withExtras := map[string]string{"b": "2", "a": "1", "c": "", "sign": "x", "sign_type": "MD5"}

	assert.Equal(t, Sign(base, "k"), Sign(withExtras, "k"))
	assert.Len(t, Sign(base, "k"), 32)
	assert.Equal(t, strings.ToLower(Sign(base, "k")), Sign(base, "k"))
}

func TestSign_KnownVector(t *testing.T) {
	// md5 of the empty parameter string followed by the key "abc"
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", Sign(map[string]string{}, "abc"))
}

func TestVerifyCallback_GET(t *testing.T) {
	g := NewEpayGateway("1001", testKey, logger.NewNopLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/webhook?"+signedValues(nil).Encode(), nil)

	data, err := g.VerifyCallback(req)
	require.NoError(t, err)
	assert.Equal(t, "order-42", data.TransactionID)
	assert.Equal(t, "2024010100001", data.GatewayOrderNo)
	assert.Equal(t, "99.00", data.Amount)
	assert.Equal(t, "success", data.Status)
	assert.Equal(t, "buyer@example.com", data.CustomerEmail)
	assert.Equal(t, "pro_yearly", data.PlanID)
}

func TestVerifyCallback_POSTForm(t *testing.T) {
	g := NewEpayGateway("1001", testKey, logger.NewNopLogger())
	body := signedValues(map[string]string{"trade_status": "WAIT_BUYER_PAY"}).Encode()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	data, err := g.VerifyCallback(req)
	require.NoError(t, err)
	assert.Equal(t, "WAIT_BUYER_PAY", data.Status)
}

func TestVerifyCallback_UppercaseSignAccepted(t *testing.T) {
	g := NewEpayGateway("1001", testKey, logger.NewNopLogger())
	values := signedValues(nil)
	values.Set("sign", strings.ToUpper(values.Get("sign")))
	req := httptest.NewRequest(http.MethodGet, "/webhook?"+values.Encode(), nil)

	_, err := g.VerifyCallback(req)
	assert.NoError(t, err)
}

func TestVerifyCallback_TamperedAmount(t *testing.T) {
	g := NewEpayGateway("1001", testKey, logger.NewNopLogger())
	values := signedValues(nil)
	values.Set("money", "0.01")
	req := httptest.NewRequest(http.MethodGet, "/webhook?"+values.Encode(), nil)

	_, err := g.VerifyCallback(req)
	require.Error(t, err)
	assert.True(t, apperrors.IsSecurityEvent(err))
}

func TestVerifyCallback_MissingParams(t *testing.T) {
	g := NewEpayGateway("1001", testKey, logger.NewNopLogger())
	values := signedValues(nil)
	values.Del("trade_no")
	req := httptest.NewRequest(http.MethodGet, "/webhook?"+values.Encode(), nil)

	_, err := g.VerifyCallback(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, paymentgateway.ErrMissingParams))
	assert.Contains(t, err.Error(), "trade_no")
}

func TestVerifyCallback_EmailFallbacks(t *testing.T) {
	g := NewEpayGateway("1001", testKey, logger.NewNopLogger())

	t.Run("query parameter", func(t *testing.T) {
		values := signedValues(map[string]string{"param": `{"plan_type":"basic_monthly"}`})
		req := httptest.NewRequest(http.MethodGet, "/webhook?"+values.Encode()+"&email=query%40example.com", nil)

		data, err := g.VerifyCallback(req)
		require.NoError(t, err)
		assert.Equal(t, "query@example.com", data.CustomerEmail)
		assert.Equal(t, "basic_monthly", data.PlanID)
	})

	t.Run("return url", func(t *testing.T) {
		values := signedValues(map[string]string{
			"param":      "not-json",
			"return_url": "https://shop.example.com/done?email=ret%40example.com",
		})
		body := values.Encode()
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		data, err := g.VerifyCallback(req)
		require.NoError(t, err)
		assert.Equal(t, "ret@example.com", data.CustomerEmail)
		assert.Empty(t, data.PlanID)
	})
}

func TestVerifySignature_NoMerchantKey(t *testing.T) {
	g := NewEpayGateway("", "", logger.NewNopLogger())
	err := g.VerifySignature(map[string]string{"sign": Sign(map[string]string{}, "")})
	assert.Error(t, err)
}
