// Package markdown turns operator-authored markdown into mail-safe HTML.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown bodies into the two parts of a multipart email.
type Renderer interface {
	// HTML returns sanitized HTML for the given markdown source.
	HTML(source string) (string, error)
	// PlainText returns the same content with all markup removed.
	PlainText(source string) (string, error)
}

type renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strip  *bluemonday.Policy
}

func NewRenderer() Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("style").OnElements("code", "pre", "p")

	return &renderer{
		md:     md,
		policy: policy,
		strip:  bluemonday.StrictPolicy(),
	}
}

func (r *renderer) HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

func (r *renderer) PlainText(source string) (string, error) {
	rendered, err := r.HTML(source)
	if err != nil {
		return "", err
	}
	text := r.strip.Sanitize(rendered)
	return strings.TrimSpace(html.UnescapeString(text)), nil
}
