package logger

import (
	"context"

	"go.uber.org/zap"
)

// loggerKey is the context key for request-scoped loggers.
type loggerKey struct{}

// ContextWithLogger returns a child context carrying the logger. Handlers
// store the per-request logger here so the layers below log with the same
// request identity.
func ContextWithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// WithFields returns a child context whose logger carries the extra fields
// on every subsequent line.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return ContextWithLogger(ctx, FromContext(ctx).With(fields...))
}

// FromContext returns the logger stored in ctx, or a no-op logger when the
// call path never attached one.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
