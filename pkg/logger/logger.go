package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/event-qa-api/internal/config"
	"github.com/rs/zerolog"
)

const serviceName = "event-qa-api"

// New creates a new zerolog logger with structured output
func New(cfg config.LogConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit destination
func NewWithWriter(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := ParseLevel(cfg.Level)

	// Use pretty console output for local runs
	if cfg.Format == "pretty" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(level).
			With().
			Timestamp().
			Caller().
			Str("service", serviceName).
			Logger()
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
