package httpx

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	loggerKey    contextKey = "logger"
)

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithRequestID returns a new context carrying the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ContextWithLogger returns a new context carrying a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFrom returns the request scoped logger, or fallback when none was set.
func LoggerFrom(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if v, ok := ctx.Value(loggerKey).(*zap.Logger); ok && v != nil {
		return v
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}
