// Package observability wires structured logging for the coordination
// core. All components log through log/slog; this package maps the
// configured level and format onto concrete handlers.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps a configuration level string onto an slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// NewJSONHandler creates a JSON log handler with the specified output and
// level. JSON format is ideal for structured logging in production.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// NewTextHandler creates a text log handler with the specified output and
// level. Text format is human-readable and useful for development.
func NewTextHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// NewLogger builds a logger from the configured level and format strings.
// Format is "text" (default) or "json".
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(NewTextHandler(w, lvl)), nil
	case "json":
		return slog.New(NewJSONHandler(w, lvl)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
