// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package logging

import (
	"context"
	"log/slog"
)

// Redaction is the replacement value for sensitive attributes.
const Redaction = "***"

// DefaultRedactedFields are the attribute keys masked by Setup. Tokens
// and credentials must never reach a log sink in the clear.
var DefaultRedactedFields = []string{"password", "new_password", "session_id", "reset_token"}

// RedactHandler wraps a slog.Handler and masks the values of configured
// attribute keys. Keys inside groups are matched by their leaf name.
type RedactHandler struct {
	handler slog.Handler
	fields  map[string]struct{}
}

// NewRedactHandler creates a RedactHandler masking the given keys.
func NewRedactHandler(handler slog.Handler, fields []string) *RedactHandler {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return &RedactHandler{handler: handler, fields: set}
}

// Handle masks sensitive attributes before delegating.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(h.redact(a))
		return true
	})
	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, clean)
}

func (h *RedactHandler) redact(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		masked := make([]slog.Attr, 0, len(members))
		for _, m := range members {
			masked = append(masked, h.redact(m))
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}
	if _, ok := h.fields[a.Key]; ok {
		return slog.String(a.Key, Redaction)
	}
	return a
}

// Enabled returns true if the level is enabled.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes, redacted.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		masked = append(masked, h.redact(a))
	}
	return &RedactHandler{handler: h.handler.WithAttrs(masked), fields: h.fields}
}

// WithGroup returns a new handler with the given group.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name), fields: h.fields}
}
