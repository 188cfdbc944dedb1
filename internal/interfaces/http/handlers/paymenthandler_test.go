package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensor/internal/application/payment/paymentgateway"
	paymentUsecases "github.com/orris-inc/licensor/internal/application/payment/usecases"
	"github.com/orris-inc/licensor/internal/infrastructure/payment"
	"github.com/orris-inc/licensor/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

const webhookKey = "merchant-secret"

type mockHandlePaymentUC struct {
	result *paymentUsecases.HandlePaymentResult
	err    error
	calls  int
	cmd    paymentUsecases.HandlePaymentCommand
}

func (m *mockHandlePaymentUC) Execute(ctx context.Context, cmd paymentUsecases.HandlePaymentCommand) (*paymentUsecases.HandlePaymentResult, error) {
	m.calls++
	m.cmd = cmd
	return m.result, m.err
}

type mockCallbackVerifier struct {
	data *paymentgateway.CallbackData
	err  error
}

func (m *mockCallbackVerifier) VerifyCallback(req *http.Request) (*paymentgateway.CallbackData, error) {
	return m.data, m.err
}

func signedWebhookForm(status string) url.Values {
	params := map[string]string{
		"pid":          "1001",
		"trade_no":     "2025051000001",
		"out_trade_no": "order-42",
		"type":         "alipay",
		"name":         "Pro monthly",
		"money":        "9.90",
		"trade_status": status,
		"param":        `{"email":"buyer@example.com","plan_type":"pro_monthly"}`,
		"sign_type":    "MD5",
	}
	params["sign"] = payment.Sign(params, webhookKey)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	return form
}

func newTestPaymentHandler(uc *mockHandlePaymentUC) *PaymentHandler {
	gateway := payment.NewEpayGateway("1001", webhookKey, logger.NewNopLogger())
	return NewPaymentHandler(gateway, uc, testutil.NewMockLogger())
}

func assertAcknowledged(t *testing.T, code int, body string) {
	t.Helper()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body)
}

func TestPaymentHandler_HandleWebhook_POST(t *testing.T) {
	uc := &mockHandlePaymentUC{result: &paymentUsecases.HandlePaymentResult{Outcome: paymentUsecases.OutcomeLicenseGenerated}}
	handler := newTestPaymentHandler(uc)

	c, w := testutil.NewFormContext(http.MethodPost, "/payments/webhook", signedWebhookForm("TRADE_SUCCESS"))

	handler.HandleWebhook(c)

	assertAcknowledged(t, w.Code, w.Body.String())
	require.Equal(t, 1, uc.calls)
	assert.Equal(t, "order-42", uc.cmd.TransactionID)
	assert.Equal(t, "9.90", uc.cmd.Amount)
	assert.Equal(t, "success", uc.cmd.Status)
	assert.Equal(t, "buyer@example.com", uc.cmd.CustomerEmail)
	assert.Equal(t, "pro_monthly", uc.cmd.PlanID)
	assert.NotContains(t, uc.cmd.RawDetails, "sign")
	assert.Equal(t, "2025051000001", uc.cmd.RawDetails["trade_no"])
}

func TestPaymentHandler_HandleWebhook_GET(t *testing.T) {
	uc := &mockHandlePaymentUC{result: &paymentUsecases.HandlePaymentResult{Outcome: paymentUsecases.OutcomeRecorded}}
	handler := newTestPaymentHandler(uc)

	c, w := testutil.NewTestContext(http.MethodGet, "/payments/webhook?"+signedWebhookForm("WAIT_BUYER_PAY").Encode(), nil)

	handler.HandleWebhook(c)

	assertAcknowledged(t, w.Code, w.Body.String())
	require.Equal(t, 1, uc.calls)
	assert.Equal(t, "WAIT_BUYER_PAY", uc.cmd.Status)
}

func TestPaymentHandler_HandleWebhook_InvalidSignatureStillAcknowledged(t *testing.T) {
	uc := &mockHandlePaymentUC{}
	handler := newTestPaymentHandler(uc)

	form := signedWebhookForm("TRADE_SUCCESS")
	form.Set("money", "0.01")
	c, w := testutil.NewFormContext(http.MethodPost, "/payments/webhook", form)

	handler.HandleWebhook(c)

	assertAcknowledged(t, w.Code, w.Body.String())
	assert.Zero(t, uc.calls)
}

func TestPaymentHandler_HandleWebhook_MissingParamsStillAcknowledged(t *testing.T) {
	uc := &mockHandlePaymentUC{}
	handler := newTestPaymentHandler(uc)

	form := signedWebhookForm("TRADE_SUCCESS")
	form.Del("out_trade_no")
	c, w := testutil.NewFormContext(http.MethodPost, "/payments/webhook", form)

	handler.HandleWebhook(c)

	assertAcknowledged(t, w.Code, w.Body.String())
	assert.Zero(t, uc.calls)
}

func TestPaymentHandler_HandleWebhook_UseCaseErrorStillAcknowledged(t *testing.T) {
	uc := &mockHandlePaymentUC{err: fmt.Errorf("database unavailable")}
	verifier := &mockCallbackVerifier{data: &paymentgateway.CallbackData{
		TransactionID: "order-7",
		Amount:        "1.00",
		Status:        "success",
	}}
	handler := NewPaymentHandler(verifier, uc, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/payments/webhook", nil)

	handler.HandleWebhook(c)

	assertAcknowledged(t, w.Code, w.Body.String())
	assert.Equal(t, 1, uc.calls)
}
