package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger is the logging interface used across accel. It wraps slog so
// components can take a Logger without caring how it is configured.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// New wraps a slog handler in a Logger.
func New(handler slog.Handler) Logger {
	return &slogLogger{l: slog.New(handler)}
}

// Default returns a text Logger writing to stderr at info level.
func Default() Logger {
	return New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Build constructs a Logger from the CLI's --log-format and --log-level
// values. Unknown formats fall back to text.
func Build(w io.Writer, format, level string) Logger {
	lvl := ParseLevel(level)
	switch format {
	case "json":
		return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	case "pretty":
		return New(NewPrettyHandler(w, &slog.HandlerOptions{Level: lvl}))
	default:
		return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

type contextKey struct{}

// WithContext attaches the logger to the context.
func WithContext(ctx context.Context, log Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// FromContext returns the logger attached to the context, or a default
// logger when none was attached.
func FromContext(ctx context.Context) Logger {
	if log, ok := ctx.Value(contextKey{}).(Logger); ok {
		return log
	}
	return Default()
}

// ParseLevel converts a string level to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidFormat reports whether the --log-format value is recognized.
func ValidFormat(format string) error {
	switch format {
	case "pretty", "json", "text", "":
		return nil
	default:
		return fmt.Errorf("unknown log format %q (expected pretty, json, or text)", format)
	}
}
