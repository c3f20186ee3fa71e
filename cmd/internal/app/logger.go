package app

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger. Format "text" produces the
// colorizable console handler for developer terminals; everything else
// gets line-delimited JSON.
func NewLogger(cfg Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.LogFormat)) {
	case "text", "console", "pretty":
		h = newConsoleHandler(os.Stdout, level, cfg.LogColor)
	default:
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(h)
}

func parseLogLevel(s string) slog.Level {
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
