package utils

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensor/internal/shared/errors"
)

// ParseCodeParam reads a license code from the named path parameter.
// Codes are opaque, so only presence is checked here.
func ParseCodeParam(c *gin.Context, paramName string) (string, error) {
	code := strings.TrimSpace(c.Param(paramName))
	if code == "" {
		return "", errors.NewValidationError("license code is required")
	}
	return code, nil
}
