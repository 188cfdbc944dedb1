package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_HTML(t *testing.T) {
	r := NewRenderer()

	out, err := r.HTML("Your code: `ABCD-1234`\n\n**Thanks**")
	require.NoError(t, err)
	assert.Contains(t, out, "<code>ABCD-1234</code>")
	assert.Contains(t, out, "<strong>Thanks</strong>")
}

func TestRenderer_HTML_StripsScripts(t *testing.T) {
	r := NewRenderer()

	out, err := r.HTML("hello <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestRenderer_PlainText(t *testing.T) {
	r := NewRenderer()

	out, err := r.PlainText("# Title\n\nvalid until **2026-01-01**")
	require.NoError(t, err)
	assert.NotContains(t, out, "<")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "2026-01-01")
}
