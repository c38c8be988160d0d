package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger so packages can accept a logger without
// importing the third-party module directly.
type Logger = zerolog.Logger

// NewLogger constructs the service logger. Development gets a console writer
// at debug level, test is silenced, everything else logs JSON at info.
func NewLogger(appEnv string) zerolog.Logger {
	return newLogger(appEnv, os.Stdout)
}

func newLogger(appEnv string, out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	switch appEnv {
	case "development":
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "test":
		level = zerolog.Disabled
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "artstudio").
		Logger()
}

// NopLogger returns a logger that drops everything; used when callers do not
// inject one.
func NopLogger() *Logger {
	l := zerolog.New(io.Discard)
	return &l
}
