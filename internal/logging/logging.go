// Package logging owns the process-wide slog setup. Everything else takes a
// *slog.Logger (usually narrowed with With("component", ...)) and never
// touches handlers directly.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the shared text logger on stderr, installs it as the slog
// default, and returns it. level is the LEADBOOK_LOG_LEVEL value: "debug",
// "info", "warn", or "error", case-insensitive. Empty or unrecognized
// values mean info.
func Setup(level string) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
