package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	old := Version
	Version = v
	t.Cleanup(func() { Version = old })
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize("  "))
	assert.Equal(t, "v1.2.3", Normalize("1.2.3"))
	assert.Equal(t, "v1.2.3", Normalize("v1.2.3"))
}

func TestCurrent(t *testing.T) {
	withVersion(t, "1.4")
	assert.Equal(t, "v1.4.0", Current())
	assert.True(t, IsRelease())

	withVersion(t, "v2.0.0-rc.1")
	assert.Equal(t, "v2.0.0-rc.1", Current())
	assert.False(t, IsRelease())

	withVersion(t, "dev")
	assert.Equal(t, "dev", Current())
	assert.False(t, IsRelease())
}
