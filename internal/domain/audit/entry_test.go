package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry_NullableFields(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	e := NewEntry("", ActionVerify, StatusFailed, "10.0.0.1", "", "not_found", now)
	assert.Nil(t, e.LicenseID)
	assert.Nil(t, e.DeviceID)

	e = NewEntry("lic_1", ActionVerify, StatusSuccess, "10.0.0.1", "d1", "ok", now)
	require.NotNil(t, e.LicenseID)
	require.NotNil(t, e.DeviceID)
	assert.Equal(t, "lic_1", *e.LicenseID)
	assert.Equal(t, "d1", *e.DeviceID)
	assert.Equal(t, now, e.CreatedAt)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusOf(true))
	assert.Equal(t, StatusFailed, StatusOf(false))
}
