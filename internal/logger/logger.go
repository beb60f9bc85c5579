// Package logger configures the process-wide slog logger and carries the
// request ID through context so per-request log lines can be correlated.
package logger

import (
	"context"
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

func init() {
	// JSON in production, text for development.
	var handler slog.Handler
	if os.Getenv("ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// Logger returns the configured process-wide logger.
func Logger() *slog.Logger {
	return defaultLogger
}

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID stores the request ID on the context for FromContext to pick up.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// FromContext returns the logger annotated with the request ID, when one
// was set by the request middleware.
func FromContext(ctx context.Context) *slog.Logger {
	l := defaultLogger
	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		l = l.With("request_id", requestID)
	}
	return l
}
