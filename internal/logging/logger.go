package logging

import (
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case string(LogLevelDebug):
		return slog.LevelDebug
	case string(LogLevelWarn):
		return slog.LevelWarn
	case string(LogLevelError):
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new structured logger with the specified level
func NewLogger(level LogLevel) *slog.Logger {
	// Use TextHandler for better readability instead of JSON
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(string(level)),
	})
	return slog.New(handler)
}

// SetupLogging configures the global slog handler based on log level.
// Call it once at startup; packages without an injected logger use slog.Default().
func SetupLogging(logLevel string) {
	slog.SetDefault(NewLogger(LogLevel(logLevel)))
}
