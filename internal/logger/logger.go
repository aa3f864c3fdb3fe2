package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

func New(env, level string) *slog.Logger {
	return NewWithWriter(os.Stdout, env, level)
}

// NewWithWriter builds a JSON logger for prod and a text logger otherwise.
func NewWithWriter(w io.Writer, env, level string) *slog.Logger {
	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level, slog.LevelInfo)})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level, slog.LevelDebug)})
	}
	return slog.New(h)
}

// ParseLevel maps debug|info|warn|error to a slog level, returning def for anything else.
func ParseLevel(s string, def slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return def
	}
}
