package gss

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with slab-store specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithType adds a type field to the logger.
func (l *Logger) WithType(typ string) *Logger {
	return &Logger{
		Logger: l.Logger.With("type", typ),
	}
}

// LogTableCreated logs the lazy creation of a slot table.
func (l *Logger) LogTableCreated(typ string, capacity int) {
	l.Debug("slot table created",
		"type", typ,
		"capacity", capacity,
	)
}

// LogViolation logs a contract violation detected by an accessor.
func (l *Logger) LogViolation(op, typ string, err error) {
	l.Error("slab access rejected",
		"op", op,
		"type", typ,
		"error", err,
	)
}
