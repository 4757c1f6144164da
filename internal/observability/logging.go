// Package observability carries per-run logging context and tracing setup.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/backupstate/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	RunID     string
	Operation string
	TraceID   string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithRunID tags the context with the identifier of a save or verify run.
func WithRunID(ctx context.Context, runID string) context.Context {
	lc := extractLogContext(ctx)
	lc.RunID = runID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithOperation adds an operation name (save, verify, ...) to the context.
func WithOperation(ctx context.Context, op string) context.Context {
	lc := extractLogContext(ctx)
	lc.Operation = op
	return context.WithValue(ctx, logContextKey, lc)
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	lc := extractLogContext(ctx)
	lc.TraceID = traceID
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// RunID returns the run identifier stored on ctx, or "".
func RunID(ctx context.Context) string {
	return extractLogContext(ctx).RunID
}

// Attrs returns slog attributes from the context's LogContext.
func Attrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}

	if lc.RunID != "" {
		attrs = append(attrs, logfields.RunID(lc.RunID))
	}
	if lc.Operation != "" {
		attrs = append(attrs, logfields.Operation(lc.Operation))
	}
	if lc.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", lc.TraceID))
	}
	return attrs
}

// Logger returns base enriched with the context's attributes.
// A nil base falls back to slog.Default().
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	attrs := Attrs(ctx)
	if len(attrs) == 0 {
		return base
	}
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	return base.With(args...)
}
