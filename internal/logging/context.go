package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	sourceKey ctxKey = iota
	requestIDKey
)

// WithSource returns a context naming where the document being rendered
// came from (a file path, "stdin", "http" or "mcp").
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// WithRequestID returns a context with the request ID set.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// Source extracts the document source from the context, or "" if absent.
func Source(ctx context.Context) string {
	v, _ := ctx.Value(sourceKey).(string)
	return v
}

// RequestID extracts the request ID from the context, or "" if absent.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// LogWith returns a logger enriched with correlation values from the context.
// Only non-empty values are added as attributes.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if src := Source(ctx); src != "" {
		logger = logger.With(slog.String("source", src))
	}
	if id := RequestID(ctx); id != "" {
		logger = logger.With(slog.String("request_id", id))
	}
	return logger
}

// CorrelationHandler wraps an slog.Handler, automatically injecting
// correlation values from the context into every log record.
// Use with slog.New(NewCorrelationHandler(inner)) so callers can use
// logger.InfoContext(ctx, ...) and the values appear automatically.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	if v := Source(ctx); v != "" {
		r.AddAttrs(slog.String("source", v))
	}
	if v := RequestID(ctx); v != "" {
		r.AddAttrs(slog.String("request_id", v))
	}
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
