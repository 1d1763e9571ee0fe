package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"

	attrRun          = "sort"
	attrRunAlgorithm = "algorithm"
	attrRunSize      = "size"
	attrRunID        = "id"
)

type runContextKey struct{}

// RunInfo identifies the sort a log record was written for.
type RunInfo struct {
	ID        string
	Algorithm string
	Size      int
}

// ContextWithRun returns a copy of ctx carrying run. [TracingHandler] adds it
// as a "sort" group to every record logged with that context.
func ContextWithRun(ctx context.Context, run RunInfo) context.Context {
	return context.WithValue(ctx, runContextKey{}, run)
}

// RunFromContext returns the run stored by [ContextWithRun].
func RunFromContext(ctx context.Context) (RunInfo, bool) {
	if ctx == nil {
		return RunInfo{}, false
	}

	run, ok := ctx.Value(runContextKey{}).(RunInfo)

	return run, ok
}

func (r RunInfo) attr() slog.Attr {
	attrs := make([]any, 0, 3)
	if r.ID != "" {
		attrs = append(attrs, slog.String(attrRunID, r.ID))
	}

	attrs = append(attrs,
		slog.String(attrRunAlgorithm, r.Algorithm),
		slog.Int(attrRunSize, r.Size),
	)

	return slog.Group(attrRun, attrs...)
}

// TracingHandler is an [slog.Handler] that stamps every record with the
// active span's trace_id and span_id, and with the sort run carried by the
// context. Service metadata is attached to the inner handler once, so it
// stays top level under WithGroup.
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps inner with trace context injection and the
// service, mode and (when set) env attributes.
func NewTracingHandler(inner slog.Handler, service, env string, appMode AppMode) *TracingHandler {
	attrs := []slog.Attr{
		slog.String(attrService, service),
		slog.String(attrMode, string(appMode)),
	}

	if env != "" {
		attrs = append(attrs, slog.String(attrEnv, env))
	}

	return &TracingHandler{inner: inner.WithAttrs(attrs)}
}

// Enabled reports whether the inner handler accepts level.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle implements [slog.Handler].
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	if run, ok := RunFromContext(ctx); ok {
		record.AddAttrs(run.attr())
	}

	err := th.inner.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs implements [slog.Handler].
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: th.inner.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: th.inner.WithGroup(name)}
}

// LoggerOrDefault returns logger, or [slog.Default] when it is nil.
func LoggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}

	return logger
}
