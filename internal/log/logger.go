// Package log wraps slog with a per-component attribute so every line
// from the engine identifies which component emitted it.
package log

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with the component attribute attached.
type Logger struct {
	*slog.Logger
}

// New creates a logger writing text lines to stdout at the given level.
// Level strings follow config: debug, info, warn, error.
func New(level, component string) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return &Logger{
		Logger: slog.New(handler).With("component", component),
	}
}

// SetDefault installs the logger as the process default.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
