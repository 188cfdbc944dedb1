package logger

import (
	"context"
	"log/slog"
)

// SensitiveKeys are attribute keys whose string values never reach the log
// output in full.
var SensitiveKeys = []string{"code", "license_code", "master_key", "merchant_key", "admin_token"}

type redactingHandler struct {
	handler slog.Handler
	keys    map[string]bool
}

// NewRedactingHandler masks the string value of any attribute whose key is
// listed, keeping a short prefix so operators can still correlate entries.
func NewRedactingHandler(handler slog.Handler, keys ...string) slog.Handler {
	keyMap := make(map[string]bool, len(keys))
	for _, k := range keys {
		keyMap[k] = true
	}
	return &redactingHandler{handler: handler, keys: keyMap}
}

func (h *redactingHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(h.redact(a))
		return true
	})
	return h.handler.Handle(ctx, redacted)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.redact(a)
	}
	return &redactingHandler{handler: h.handler.WithAttrs(masked), keys: h.keys}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{handler: h.handler.WithGroup(name), keys: h.keys}
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *redactingHandler) redact(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		masked := make([]any, len(group))
		for i, ga := range group {
			masked[i] = h.redact(ga)
		}
		return slog.Group(a.Key, masked...)
	}
	if h.keys[a.Key] && a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, MaskSecret(a.Value.String()))
	}
	return a
}

// MaskSecret keeps the first four characters of a secret.
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
