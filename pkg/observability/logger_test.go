package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sortviz/pkg/observability"
)

func TestTracingHandler_InjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := observability.NewTracingHandler(inner, "test-svc", "test", observability.ModeCLI)
	logger := slog.New(handler)

	// Create a span context with known trace and span IDs.
	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.InfoContext(ctx, "test message")

	var record map[string]any

	err = json.Unmarshal(buf.Bytes(), &record)
	require.NoError(t, err)

	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", record["trace_id"])
	assert.Equal(t, "0102030405060708", record["span_id"])
	assert.Equal(t, "test-svc", record["service"])
	assert.Equal(t, "test", record["env"])
	assert.Equal(t, "cli", record["mode"])
}

func TestTracingHandler_NoTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := observability.NewTracingHandler(inner, "sortviz", "", observability.ModeMCP)
	logger := slog.New(handler)

	logger.InfoContext(context.Background(), "no span")

	var record map[string]any

	err := json.Unmarshal(buf.Bytes(), &record)
	require.NoError(t, err)

	// No trace_id or span_id should be present without active span.
	_, hasTraceID := record["trace_id"]
	assert.False(t, hasTraceID)

	// Service and mode should still be present.
	assert.Equal(t, "sortviz", record["service"])
	assert.Equal(t, "mcp", record["mode"])
}

func TestTracingHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := observability.NewTracingHandler(inner, "sortviz", "", observability.ModeCLI)
	logger := slog.New(handler)

	grouped := logger.WithGroup("run")
	grouped.InfoContext(context.Background(), "pass done", slog.String("algorithm", "merge"))

	var record map[string]any

	err := json.Unmarshal(buf.Bytes(), &record)
	require.NoError(t, err)

	// Service attrs should be at top level.
	assert.Equal(t, "sortviz", record["service"])

	// Grouped attrs should be nested.
	group, ok := record["run"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "merge", group["algorithm"])
}

func TestTracingHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := observability.NewTracingHandler(inner, "sortviz", "", observability.ModeCLI)
	logger := slog.New(handler)

	withAttrs := logger.With(slog.String("op", "sort_run"))
	withAttrs.InfoContext(context.Background(), "started")

	var record map[string]any

	err := json.Unmarshal(buf.Bytes(), &record)
	require.NoError(t, err)

	assert.Equal(t, "sort_run", record["op"])
	assert.Equal(t, "sortviz", record["service"])
}

func TestLoggerOrDefault(t *testing.T) {
	t.Parallel()

	assert.Same(t, slog.Default(), observability.LoggerOrDefault(nil))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, custom, observability.LoggerOrDefault(custom))
}

func TestTracingHandler_AddsRunFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewTracingHandler(inner, "sortviz", "", observability.ModeServe))

	ctx := observability.ContextWithRun(context.Background(), observability.RunInfo{
		ID:        "3",
		Algorithm: "quick",
		Size:      40,
	})

	logger.InfoContext(ctx, "sort finished", slog.Int64("swaps", 12))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	run, ok := record["sort"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "3", run["id"])
	assert.Equal(t, "quick", run["algorithm"])
	assert.InDelta(t, 40, run["size"], 0)
	assert.InDelta(t, 12, record["swaps"], 0)
	assert.Equal(t, "serve", record["mode"])
}

func TestTracingHandler_RunWithoutID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(observability.NewTracingHandler(slog.NewJSONHandler(&buf, nil), "sortviz", "", observability.ModeMCP))

	ctx := observability.ContextWithRun(context.Background(), observability.RunInfo{Algorithm: "bubble", Size: 5})
	logger.InfoContext(ctx, "mcp sort finished")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	run, ok := record["sort"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, run, "id")
	assert.Equal(t, "bubble", run["algorithm"])
}

func TestRunFromContext(t *testing.T) {
	t.Parallel()

	_, ok := observability.RunFromContext(context.Background())
	assert.False(t, ok)

	want := observability.RunInfo{ID: "1", Algorithm: "merge", Size: 8}

	got, ok := observability.RunFromContext(observability.ContextWithRun(context.Background(), want))
	require.True(t, ok)
	assert.Equal(t, want, got)
}
