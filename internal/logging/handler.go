// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package logging provides structured logging with OpenTelemetry trace context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"
)

// Verbosity levels understood by the client settings.
const (
	VerbosityNormal = "NORMAL"
	VerbosityDebug  = "DEBUG"
)

// traceHandler wraps a slog.Handler to add trace context.
type traceHandler struct {
	handler slog.Handler
	service string
	version string
}

// Handle adds trace context to the log record.
func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		r.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, r)
}

// Enabled returns true if the level is enabled.
func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes.
func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{
		handler: h.handler.WithAttrs(attrs),
		service: h.service,
		version: h.version,
	}
}

// WithGroup returns a new handler with the given group.
func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{
		handler: h.handler.WithGroup(name),
		service: h.service,
		version: h.version,
	}
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "text" if empty, the CLI writes for humans)
// If level is nil, INFO is used. If w is nil, writes to os.Stderr.
func Setup(service, version, format string, level slog.Leveler, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if level == nil {
		level = slog.LevelInfo
	}

	var baseHandler slog.Handler
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redact}

	if format == "json" {
		baseHandler = slog.NewJSONHandler(w, opts)
	} else {
		baseHandler = slog.NewTextHandler(w, opts)
	}

	return slog.New(&traceHandler{
		handler: baseHandler,
		service: service,
		version: version,
	})
}

// secretKeys are attribute keys whose values never reach the output.
var secretKeys = map[string]bool{
	"password":      true,
	"token":         true,
	"authorization": true,
}

// Redacted replaces the value of secret attributes.
const Redacted = "[redacted]"

func redact(_ []string, a slog.Attr) slog.Attr {
	if secretKeys[strings.ToLower(a.Key)] && a.Value.String() != "" {
		return slog.String(a.Key, Redacted)
	}
	return a
}

// LevelForVerbosity maps a verbosity setting to a log level.
// Unknown values fall back to INFO.
func LevelForVerbosity(verbosity string) slog.Level {
	if strings.EqualFold(verbosity, VerbosityDebug) {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// WithRunID tags every record of logger with a fresh run identifier and
// returns the identifier for correlation in metrics and error output.
func WithRunID(logger *slog.Logger) (*slog.Logger, string) {
	id := ulid.Make().String()
	return logger.With("run_id", id), id
}
