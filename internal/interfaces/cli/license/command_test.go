package license

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensor/internal/application/license/dto"
)

func TestPrintResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := printResult(&buf, outputJSON, &dto.RepairReport{Scanned: 2, Repaired: []string{"lic_1"}, Mismatched: []string{}, Failed: []string{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"scanned":2,"repaired":["lic_1"],"mismatched":[],"failed":[]}`, buf.String())
}

func TestPrintResult_YAML(t *testing.T) {
	var buf bytes.Buffer
	err := printResult(&buf, outputYAML, map[string]bool{"revoked": true})
	require.NoError(t, err)
	assert.Equal(t, "revoked: true\n", buf.String())
}

func TestOptionalDays(t *testing.T) {
	cmd := &cobra.Command{}
	var days int
	cmd.Flags().IntVar(&days, "days", 0, "")

	assert.Nil(t, optionalDays(cmd, days))

	require.NoError(t, cmd.Flags().Set("days", "30"))
	got := optionalDays(cmd, days)
	require.NotNil(t, got)
	assert.Equal(t, 30, *got)
}

func TestNewCommand_Subcommands(t *testing.T) {
	cmd := NewCommand()
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"generate", "revoke", "renew", "info", "audit", "email", "repair"}, names)
}

func TestWithUseCases_RejectsUnknownOutput(t *testing.T) {
	output = "xml"
	t.Cleanup(func() { output = outputYAML })

	err := withUseCases(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
