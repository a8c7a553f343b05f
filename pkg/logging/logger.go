// Package logging builds the service logger and carries request-scoped loggers on the context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/m-mizutani/clog"
)

// Attribute keys shared by every request-scoped log line.
const (
	KeyService   = "service"
	KeyRequestID = "request_id"
	KeyUserID    = "user_id"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type ctxKey struct{}

var (
	defaultLogger   = New(Options{})
	defaultLoggerMu sync.RWMutex
)

// Options configure New. Zero values mean info level, console output on stdout.
type Options struct {
	Level   string
	Format  string
	Writer  io.Writer
	Service string
}

// ParseLevel converts a level name to slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// New returns a colored console logger for local runs, or a JSON logger for log collectors.
// goerr values attached to errors are expanded in both formats.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	level := ParseLevel(opts.Level)

	var handler slog.Handler
	if strings.EqualFold(opts.Format, FormatJSON) {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithTimeFmt("15:04:05"),
			clog.WithAttrHook(clog.GoerrHook),
		)
	}

	logger := slog.New(handler)
	if opts.Service != "" {
		logger = logger.With(KeyService, opts.Service)
	}
	return logger
}

func Default() *slog.Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

func SetDefault(logger *slog.Logger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}

// With returns a copy of ctx carrying logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the logger attached to ctx, or the default logger.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return logger
		}
	}
	return Default()
}

// WithRequest attaches base tagged with the request id and returns both.
func WithRequest(ctx context.Context, base *slog.Logger, requestID string) (context.Context, *slog.Logger) {
	if base == nil {
		base = Default()
	}
	logger := base.With(KeyRequestID, requestID)
	return With(ctx, logger), logger
}

// WithUser tags the context logger with the chat user id.
func WithUser(ctx context.Context, userID string) (context.Context, *slog.Logger) {
	logger := From(ctx).With(KeyUserID, userID)
	return With(ctx, logger), logger
}

// Discard is a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
