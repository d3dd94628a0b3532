package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger so packages can accept a logger without
// importing zerolog themselves.
type Logger = zerolog.Logger

// NewLogger builds the process logger: JSON at info level in production,
// human readable console output at debug level in development.
func NewLogger(appEnv string) Logger {
	return newLogger(appEnv, os.Stdout)
}

func newLogger(appEnv string, out io.Writer) Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "cut-generation").
		Logger()

	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return logger
}

// NopLogger returns a logger that discards everything. Clients fall back to it
// when constructed without one.
func NopLogger() *Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// LoggerOrNop dereferences logger, or returns a discarding logger for nil.
func LoggerOrNop(logger *Logger) Logger {
	if logger == nil {
		return *NopLogger()
	}
	return *logger
}
