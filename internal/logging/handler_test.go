// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("resto", "1.0.0", "json", nil, &buf)

	logger.Info("test message")

	var entry map[string]any
	err := json.Unmarshal(buf.Bytes(), &entry)
	require.NoError(t, err, "Failed to parse JSON: %s", buf.String())

	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "resto", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Contains(t, entry, "time", "time field missing")
	assert.Contains(t, entry, "level", "level field missing")
}

func TestSetup_DefaultFormatIsText(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("resto", "1.0.0", "", nil, &buf)

	logger.Info("test message")

	output := buf.String()
	assert.Contains(t, output, "msg=\"test message\"")
	assert.Contains(t, output, "service=resto")
}

func TestSetup_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Leveler
		wantDebug bool
	}{
		{"default info hides debug", nil, false},
		{"debug level shows debug", slog.LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Setup("resto", "dev", "text", tt.level, &buf)

			logger.Debug("hidden?")

			assert.Equal(t, tt.wantDebug, buf.Len() > 0)
		})
	}
}

func TestHandler_TraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("resto", "1.0.0", "json", nil, &buf)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "traced message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestHandler_NoTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("resto", "1.0.0", "json", nil, &buf)

	logger.Info("no trace message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.NotContains(t, entry, "trace_id")
	assert.NotContains(t, entry, "span_id")
}

func TestLevelForVerbosity(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelForVerbosity("DEBUG"))
	assert.Equal(t, slog.LevelDebug, LevelForVerbosity("debug"))
	assert.Equal(t, slog.LevelInfo, LevelForVerbosity("NORMAL"))
	assert.Equal(t, slog.LevelInfo, LevelForVerbosity(""))
}

func TestWithRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, id := WithRunID(Setup("resto", "1.0.0", "json", nil, &buf))

	_, err := ulid.Parse(id)
	require.NoError(t, err)

	logger.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, id, entry["run_id"])
}

func TestSetup_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("resto", "1.0.0", "json", nil, &buf)

	logger.Info("login", "username", "alice", "password", "secret", "Token", "abc", "authorization", "")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "alice", entry["username"])
	assert.Equal(t, Redacted, entry["password"])
	assert.Equal(t, Redacted, entry["Token"])
	assert.Equal(t, "", entry["authorization"])
}
