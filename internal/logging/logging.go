// internal/logging/logging.go
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "DEVLINK_LOG_LEVEL"
	EnvLogNoColor = "DEVLINK_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// New builds a console logger for the given profile. Loggers are plain
// values handed to constructors; nothing here is process-global, so
// tests can run components with independent settings concurrently.
func New(profile Profile) zerolog.Logger {
	level := zerolog.InfoLevel
	timestamp := true
	if profile == ProfileTest {
		level = zerolog.DebugLevel
		timestamp = false
	}

	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}

	w := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: os.Getenv(EnvLogNoColor) != "",
	}

	logger := zerolog.New(w).Level(level)
	if timestamp {
		logger = logger.With().Timestamp().Logger()
	}
	return logger
}

func parseLevel(s string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "off", "disabled":
		return zerolog.Disabled, true
	default:
		return zerolog.NoLevel, false
	}
}
