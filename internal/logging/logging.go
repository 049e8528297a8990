// Package logging provides structured logging for estq using zerolog.
// Console output is used on a terminal, JSON otherwise; the CLI's own
// command output stays on stdout and is never routed through here.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var defaultLogger zerolog.Logger

// Nop discards all output.
var Nop = zerolog.Nop()

func init() {
	defaultLogger = newLogger(os.Stderr, levelFromEnv())
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) && os.Getenv("LOG_FORMAT") != "json" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func levelFromEnv() zerolog.Level {
	if raw := os.Getenv("ESTQ_LOG_LEVEL"); raw != "" {
		if level, err := zerolog.ParseLevel(raw); err == nil {
			return level
		}
	}
	return zerolog.InfoLevel
}

// Default returns the global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetLevel adjusts the global logger level, typically from config after
// the env-only bootstrap default.
func SetLevel(raw string) {
	if level, err := zerolog.ParseLevel(raw); err == nil {
		defaultLogger = defaultLogger.Level(level)
	}
}

// New creates a logger writing to w at the global level.
func New(w io.Writer) zerolog.Logger {
	return newLogger(w, defaultLogger.GetLevel())
}
