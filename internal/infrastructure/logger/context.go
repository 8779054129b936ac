package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	userIDKey
	inventoryIDKey
)

// WithContext stores logger in ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// Ctx returns the context logger with the active span's trace and span ids
// attached, so entries can be joined with traces.
func Ctx(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	if fields := TraceFields(ctx); len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}

// TraceFields returns trace_id and span_id of the active span, if any
func TraceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}

// WithRequestID records the request id and returns the enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return enrich(ctx, logger, requestIDKey, "request_id", requestID)
}

// WithUserID records the authenticated user and returns the enriched logger
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	return enrich(ctx, logger, userIDKey, "user_id", userID)
}

// WithInventoryID records the caller's inventory and returns the enriched logger
func WithInventoryID(ctx context.Context, logger *zap.Logger, inventoryID string) (context.Context, *zap.Logger) {
	return enrich(ctx, logger, inventoryIDKey, "inventory_id", inventoryID)
}

func enrich(ctx context.Context, logger *zap.Logger, key ctxKey, field, value string) (context.Context, *zap.Logger) {
	l := logger.With(zap.String(field, value))
	return WithContext(context.WithValue(ctx, key, value), l), l
}

// RequestID returns the request id recorded in ctx
func RequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

// UserID returns the user id recorded in ctx
func UserID(ctx context.Context) string { return stringValue(ctx, userIDKey) }

// InventoryID returns the inventory id recorded in ctx
func InventoryID(ctx context.Context) string { return stringValue(ctx, inventoryIDKey) }

func stringValue(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}
