package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Admin authentication error types
const (
	ErrorTypeCredentialsMissing ErrorType = "credentials_missing"
	ErrorTypeTokenExpired       ErrorType = "token_expired"
	ErrorTypeTokenInvalid       ErrorType = "token_invalid"
	ErrorTypeSignatureInvalid   ErrorType = "signature_invalid"
)

// AuthError represents an admin or webhook authentication failure.
type AuthError struct {
	*AppError
	// SecurityEvent marks failures that may indicate tampering.
	SecurityEvent bool
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return e.AppError.Error()
}

// Unwrap allows errors.Is and errors.As to work correctly
func (e *AuthError) Unwrap() error {
	return e.AppError
}

// NewCredentialsMissingError is returned when neither an admin token nor a bearer token is present.
func NewCredentialsMissingError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeCredentialsMissing,
			Message: "Admin credentials required",
			Code:    http.StatusUnauthorized,
		},
	}
}

// NewTokenExpiredError creates an error for expired tokens
func NewTokenExpiredError(tokenType string) *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeTokenExpired,
			Message: fmt.Sprintf("%s has expired", tokenType),
			Code:    http.StatusUnauthorized,
		},
	}
}

// NewTokenInvalidError creates an error for invalid tokens
func NewTokenInvalidError(tokenType string) *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeTokenInvalid,
			Message: fmt.Sprintf("Invalid %s", tokenType),
			Code:    http.StatusUnauthorized,
		},
		SecurityEvent: true,
	}
}

// NewSignatureInvalidError creates an error for webhook payloads whose signature does not match.
func NewSignatureInvalidError(details ...string) *AuthError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeSignatureInvalid,
			Message: "Invalid signature",
			Code:    http.StatusUnauthorized,
			Details: detail,
		},
		SecurityEvent: true,
	}
}

// GetAuthError extracts AuthError from error chain (supports wrapped errors via errors.As)
func GetAuthError(err error) *AuthError {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return authErr
	}
	return nil
}

// IsSecurityEvent returns true if the error should be tracked as a security event
func IsSecurityEvent(err error) bool {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.SecurityEvent
	}
	return false
}
