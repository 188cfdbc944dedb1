package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensor/internal/interfaces/http/handlers/testutil"
)

func TestHealthHandler_Healthy(t *testing.T) {
	handler := NewHealthHandler(map[string]HealthChecker{
		"database": HealthCheckerFunc(func(ctx context.Context) error { return nil }),
	}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
	handler.HealthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "ok", resp.Checks["database"])
}

func TestHealthHandler_DependencyDown(t *testing.T) {
	handler := NewHealthHandler(map[string]HealthChecker{
		"database": HealthCheckerFunc(func(ctx context.Context) error { return nil }),
		"redis":    HealthCheckerFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
	handler.HealthCheck(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "unreachable", resp.Checks["redis"])
	assert.Equal(t, "ok", resp.Checks["database"])
}
