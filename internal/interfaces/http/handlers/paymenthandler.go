package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensor/internal/application/payment/paymentgateway"
	paymentUsecases "github.com/orris-inc/licensor/internal/application/payment/usecases"
	"github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

// webhookAck is the body every provider callback receives, whatever happened.
const webhookAck = "success"

type PaymentHandler struct {
	verifier        paymentgateway.CallbackVerifier
	handlePaymentUC handlePaymentUseCase
	logger          logger.Interface
}

func NewPaymentHandler(
	verifier paymentgateway.CallbackVerifier,
	handlePaymentUC handlePaymentUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		verifier:        verifier,
		handlePaymentUC: handlePaymentUC,
		logger:          logger,
	}
}

// @Summary		Payment webhook
// @Description	Receive a signed payment provider notification. Always acknowledged with the plain body "success".
// @Tags			payments
// @Accept			x-www-form-urlencoded
// @Produce		plain
// @Param			out_trade_no	query		string	true	"Merchant order number"
// @Param			trade_no		query		string	true	"Provider order number"
// @Param			money			query		string	true	"Amount"
// @Param			trade_status	query		string	true	"Provider status"
// @Param			sign			query		string	true	"MD5 signature"
// @Success		200				{string}	string	"success"
// @Router			/payments/webhook [get]
// @Router			/payments/webhook [post]
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	defer utils.PlainTextResponse(c, http.StatusOK, webhookAck)

	data, err := h.verifier.VerifyCallback(c.Request)
	if err != nil {
		switch {
		case stderrors.Is(err, paymentgateway.ErrMissingParams):
			h.logger.Warnw("payment callback rejected", "client_ip", c.ClientIP(), "error", err)
		case errors.IsSecurityEvent(err):
			h.logger.Warnw("payment callback signature invalid", "client_ip", c.ClientIP(), "error", err)
		default:
			h.logger.Errorw("failed to read payment callback", "client_ip", c.ClientIP(), "error", err)
		}
		return
	}

	raw := make(map[string]any, len(data.RawData))
	for k, v := range data.RawData {
		if k == "sign" {
			continue
		}
		raw[k] = v
	}

	result, err := h.handlePaymentUC.Execute(c.Request.Context(), paymentUsecases.HandlePaymentCommand{
		TransactionID: data.TransactionID,
		Amount:        data.Amount,
		Currency:      data.Currency,
		Status:        data.Status,
		CustomerEmail: data.CustomerEmail,
		PlanID:        data.PlanID,
		RawDetails:    raw,
	})
	if err != nil {
		h.logger.Errorw("failed to handle payment",
			"transaction_id", data.TransactionID,
			"error", err,
		)
		return
	}

	h.logger.Infow("payment callback handled",
		"transaction_id", data.TransactionID,
		"outcome", result.Outcome,
	)
}
