// Package logging builds the service's structured logger and maps its level onto
// the GORM logger so SQL tracing follows LOG_LEVEL.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	gormlogger "gorm.io/gorm/logger"
)

// ParseLevel converts a LOG_LEVEL value to a slog.Level. Unknown values are info.
func ParseLevel(level string) slog.Level {
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

// New creates a logger writing to w in "json" or "text" format.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("service", "rentals")
}

// Default creates a stderr logger and installs it as the slog default.
func Default(level, format string) *slog.Logger {
	l := New(os.Stderr, level, format)
	slog.SetDefault(l)
	return l
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// GormLevel maps LOG_LEVEL onto the GORM logger. SQL statements are only traced at debug.
func GormLevel(level string) gormlogger.LogLevel {
	switch ParseLevel(level) {
	case slog.LevelDebug:
		return gormlogger.Info
	case slog.LevelError:
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
