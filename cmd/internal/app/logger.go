package app

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the app-wide logger type (slog).
type Logger = *slog.Logger

func parseLogLevel(level string) slog.Level {
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

// NewLogger creates a structured logger writing to stderr, so command output
// on stdout stays machine-readable. Format "json" is for CI and log
// shipping; anything else gets the human-oriented pretty handler.
func NewLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = newPrettyHandler(os.Stderr, opts, isTerminal())
	}

	log := slog.New(h)
	slog.SetDefault(log)
	return log
}

// isTerminal is a cheap check for color support: honor NO_COLOR, otherwise
// assume a terminal unless output is known to be piped (TERM=dumb).
func isTerminal() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}
