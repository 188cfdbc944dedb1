package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensor/internal/shared/constants"
	"github.com/orris-inc/licensor/internal/shared/errors"
)

// APIResponse is the JSON envelope of every API endpoint except the payment
// webhook acknowledgement.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorInfo carries a machine readable type. For verification denials the
// type is the failure reason.
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func CreatedResponse(c *gin.Context, data interface{}, message ...string) {
	msg := "Resource created successfully"
	if len(message) > 0 {
		msg = message[0]
	}
	SuccessResponse(c, http.StatusCreated, msg, data)
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	writeError(c, statusCode, ErrorInfo{Type: "error", Message: message})
}

// DeniedResponse answers a verification that was refused for reason.
func DeniedResponse(c *gin.Context, reason, message string) {
	writeError(c, http.StatusForbidden, ErrorInfo{Type: reason, Message: message})
}

// ErrorResponseWithError maps AppErrors to their status. Anything else is
// reported as a 500 without its message.
func ErrorResponseWithError(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		writeError(c, http.StatusInternalServerError, ErrorInfo{
			Type:    string(errors.ErrorTypeInternal),
			Message: constants.ErrMsgInternalServerError,
		})
		return
	}

	writeError(c, appErr.Code, ErrorInfo{
		Type:    string(appErr.Type),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// PlainTextResponse writes a bare text body. Payment providers expect the
// acknowledgement as plain text rather than the JSON envelope.
func PlainTextResponse(c *gin.Context, statusCode int, body string) {
	c.String(statusCode, body)
}

func writeError(c *gin.Context, statusCode int, info ErrorInfo) {
	c.JSON(statusCode, APIResponse{Success: false, Error: &info})
}
