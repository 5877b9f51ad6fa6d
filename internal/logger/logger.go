// Package logger provides the structured application logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog for the client packages.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing text to stderr at the given level.
func New(level int) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(level)})),
	}
}

// NewNoop returns a logger that discards everything. Used in tests.
func NewNoop() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})),
	}
}

// Fatal is equivalent to Error followed by os.Exit(1).
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
