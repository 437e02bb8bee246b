// Package logging configures the structured logger. The TUI owns stdout,
// so logs go to a file under the config directory.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New creates a JSON slog logger writing to w at the given level.
func New(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

// Open opens (or creates) the log file for appending.
func Open(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// Discard returns a logger that drops everything. Used in tests and as a
// fallback when the log file cannot be opened.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
