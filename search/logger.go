package search

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with search-specific helpers so field names stay
// consistent across backends and host bindings.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler to stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON lines to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))}
}

// NewTextLogger creates a Logger that writes human-readable lines to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))}
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// WithKey tags the logger with a packed search key and its halves.
func (l *Logger) WithKey(key uint32) *Logger {
	a, b := Split(key)
	return &Logger{Logger: l.Logger.With("key", key, "tid", a, "sid", b)}
}

// WithBackend tags the logger with the backend name.
func (l *Logger) WithBackend(name string) *Logger {
	return &Logger{Logger: l.Logger.With("backend", name)}
}

// LogTransition records a pipeline state change.
func (l *Logger) LogTransition(ctx context.Context, from, to State) {
	l.DebugContext(ctx, "pipeline transition", "from", from.String(), "to", to.String())
}

// LogAcquire logs the outcome of a session acquisition.
func (l *Logger) LogAcquire(ctx context.Context, cached bool, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "accelerator acquisition failed",
			"cached", cached,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "accelerator acquired",
		"cached", cached,
		"elapsed", elapsed,
	)
}

// LogSearch logs a finished search.
func (l *Logger) LogSearch(ctx context.Context, res Result, elapsed time.Duration, err error) {
	if err != nil {
		state, _ := FailedAt(err)
		l.ErrorContext(ctx, "search failed",
			"state", state.String(),
			"elapsed", elapsed,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "search completed",
		"count", res.Count,
		"returned", len(res.Values),
		"elapsed", elapsed,
	)
}

// LogOverflow warns that the kernel reported more matches than fit.
func (l *Logger) LogOverflow(ctx context.Context, res Result) {
	l.WarnContext(ctx, "kernel reported more matches than output slots",
		"count", res.Count,
		"capacity", MaxMatches,
		"dropped", res.Dropped(),
	)
}
