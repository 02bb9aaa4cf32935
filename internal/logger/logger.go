package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey struct{}

// WithRequestID stores the request id so log lines emitted deeper in the call chain carry it.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, rid)
}

func RequestID(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKey{}).(string)
	return rid
}

type Logger struct {
	service  string
	hostname string
	handler  *slog.Logger
}

func New(service string, w io.Writer, level slog.Level) *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		service:  service,
		hostname: hostname,
		handler:  slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// Discard returns a logger that writes nowhere. Used by tests.
func Discard() *Logger {
	return New("test", io.Discard, slog.LevelError+1)
}

func (l *Logger) Info(ctx context.Context, action, message string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, action, message, attrs...)
}

func (l *Logger) Debug(ctx context.Context, action, message string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, action, message, attrs...)
}

func (l *Logger) Warn(ctx context.Context, action, message string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, action, message, attrs...)
}

func (l *Logger) Error(ctx context.Context, action, message string, err error, attrs ...slog.Attr) {
	if err != nil {
		attrs = append(attrs, slog.Group("error", slog.String("msg", err.Error())))
	}
	l.log(ctx, slog.LevelError, action, message, attrs...)
}

func (l *Logger) log(ctx context.Context, level slog.Level, action, message string, attrs ...slog.Attr) {
	base := []slog.Attr{
		slog.String("service", l.service),
		slog.String("hostname", l.hostname),
		slog.String("action", action),
	}
	if rid := RequestID(ctx); rid != "" {
		base = append(base, slog.String("request_id", rid))
	}
	l.handler.LogAttrs(ctx, level, message, append(base, attrs...)...)
}
