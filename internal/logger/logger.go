// Package logger configures the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options controls where and how much is logged.
type Options struct {
	Level     string
	Path      string
	SentryDSN string
}

// ParseLevel maps a level name to a slog level. Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs the default logger. The terminal belongs to the UI, so records
// go to a file; errors are additionally forwarded to Sentry when a DSN is set.
// The returned function flushes and closes everything Init opened.
func Init(opts Options) (func(), error) {
	out, closeOut, err := openOutput(opts.Path)
	if err != nil {
		return func() {}, err
	}
	handler := New(out, opts.Level, opts.SentryDSN)
	slog.SetDefault(slog.New(handler))

	return func() {
		if opts.SentryDSN != "" {
			sentry.Flush(2 * time.Second)
		}
		closeOut()
	}, nil
}

// New builds the handler chain without touching the default logger.
func New(out io.Writer, level, sentryDSN string) slog.Handler {
	handlers := []slog.Handler{
		slog.NewTextHandler(out, &slog.HandlerOptions{Level: ParseLevel(level)}),
	}

	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			slog.New(handlers[0]).Warn("failed to init sentry, errors stay local", "error", err)
		} else {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	if len(handlers) > 1 {
		return slogmulti.Fanout(handlers...)
	}
	return handlers[0]
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stderr, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() {
		// best-effort close
		_ = f.Close()
	}, nil
}
