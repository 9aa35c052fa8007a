// Package logger provides the process-wide structured logger built on
// log/slog.
//
// Handlers should log through WithCtx so lines carry the request id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order submitted", "order_id", order.ID.Hex())
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/pantry/config"
)

var L *slog.Logger

func init() {
	L = slog.New(newHandler(os.Stdout, config.IsProduction()))
	slog.SetDefault(L)
}

// newHandler returns JSON for log aggregators in production and text
// otherwise.
func newHandler(w io.Writer, production bool) slog.Handler {
	if production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Tee adds extra handlers next to the console handler, e.g. a MongoHandler.
func Tee(extra ...slog.Handler) {
	hs := append([]slog.Handler{newHandler(os.Stdout, config.IsProduction())}, extra...)
	L = slog.New(NewMultiHandler(hs...))
	slog.SetDefault(L)
}

// Discard silences all logging. Used by tests that exercise noisy paths.
func Discard() {
	L = slog.New(slog.NewTextHandler(io.Discard, nil))
	slog.SetDefault(L)
}

type ctxKey struct{}

// WithCtx returns the request-scoped logger stored by the Logger middleware,
// or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
