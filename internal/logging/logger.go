package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

type ctxKey struct{}

// InitLogger installs a tint handler on stdout as the default slog logger.
func InitLogger(level slog.Level) {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})

	slog.SetDefault(slog.New(handler))
}

// WithRequestID stores a request-scoped logger carrying request_id in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	logger := slog.Default().With(slog.String("request_id", requestID))
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request-scoped logger, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
