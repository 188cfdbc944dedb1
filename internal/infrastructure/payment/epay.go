// Package payment verifies provider callbacks for the payment intake.
package payment

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/orris-inc/licensor/internal/application/payment/paymentgateway"
	vo "github.com/orris-inc/licensor/internal/domain/payment/valueobjects"
	apperrors "github.com/orris-inc/licensor/internal/shared/errors"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

// TradeStatusSuccess is the only provider status that provisions a license.
const TradeStatusSuccess = "TRADE_SUCCESS"

var requiredParams = []string{
	"pid", "trade_no", "out_trade_no", "type", "name", "money", "trade_status", "sign", "sign_type",
}

// EpayGateway verifies epay-style form callbacks signed with an MD5 merchant key.
type EpayGateway struct {
	merchantID  string
	merchantKey string
	logger      logger.Interface
}

var _ paymentgateway.CallbackVerifier = (*EpayGateway)(nil)

func NewEpayGateway(merchantID, merchantKey string, logger logger.Interface) *EpayGateway {
	return &EpayGateway{
		merchantID:  merchantID,
		merchantKey: merchantKey,
		logger:      logger,
	}
}

// Sign computes the lowercase hex MD5 over the sorted non-empty parameters,
// excluding sign and sign_type, joined as k=v&k=v with the key appended.
func Sign(params map[string]string, key string) string {
	names := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || k == "sign_type" || v == "" {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}
	b.WriteString(key)

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// VerifySignature compares the received sign field case-insensitively.
func (g *EpayGateway) VerifySignature(params map[string]string) error {
	if g.merchantKey == "" {
		return apperrors.NewSignatureInvalidError("merchant key not configured")
	}
	received := strings.ToLower(params["sign"])
	if received == "" || Sign(params, g.merchantKey) != received {
		return apperrors.NewSignatureInvalidError()
	}
	return nil
}

// VerifyCallback reads GET callbacks from the query string and POST callbacks
// from the form body.
func (g *EpayGateway) VerifyCallback(req *http.Request) (*paymentgateway.CallbackData, error) {
	params, err := callbackParams(req)
	if err != nil {
		return nil, apperrors.NewBadRequestError("malformed payment callback", err.Error())
	}

	var missing []string
	for _, name := range requiredParams {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", paymentgateway.ErrMissingParams, strings.Join(missing, ","))
	}

	if g.merchantID != "" && params["pid"] != g.merchantID {
		g.logger.Warnw("payment callback for unexpected merchant",
			"expected", g.merchantID,
			"actual", params["pid"],
		)
	}

	if err := g.VerifySignature(params); err != nil {
		return nil, err
	}

	email, planID := extractParam(params["param"], g.logger)
	if email == "" {
		email = strings.TrimSpace(req.URL.Query().Get("email"))
	}
	if email == "" {
		email = emailFromReturnURL(params["return_url"])
	}

	status := params["trade_status"]
	if status == TradeStatusSuccess {
		status = string(vo.PaymentStatusSuccess)
	}

	return &paymentgateway.CallbackData{
		TransactionID:  params["out_trade_no"],
		GatewayOrderNo: params["trade_no"],
		Amount:         params["money"],
		Currency:       vo.DefaultCurrency,
		Status:         status,
		PaymentType:    params["type"],
		CustomerEmail:  email,
		PlanID:         planID,
		RawData:        params,
	}, nil
}

func callbackParams(req *http.Request) (map[string]string, error) {
	var values url.Values
	if req.Method == http.MethodPost {
		if err := req.ParseForm(); err != nil {
			return nil, err
		}
		values = req.PostForm
	} else {
		values = req.URL.Query()
	}

	params := make(map[string]string, len(values))
	for k := range values {
		params[k] = values.Get(k)
	}
	return params, nil
}

type callbackParam struct {
	Email    string `json:"email"`
	PlanType string `json:"plan_type"`
}

// extractParam decodes the merchant-supplied param JSON. Malformed JSON is
// logged and treated as empty.
func extractParam(raw string, log logger.Interface) (email, planID string) {
	if raw == "" {
		return "", ""
	}
	var p callbackParam
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Warnw("unable to decode payment callback param", "error", err)
		return "", ""
	}
	return strings.TrimSpace(p.Email), strings.TrimSpace(p.PlanType)
}

func emailFromReturnURL(returnURL string) string {
	if returnURL == "" {
		return ""
	}
	u, err := url.Parse(returnURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(u.Query().Get("email"))
}
