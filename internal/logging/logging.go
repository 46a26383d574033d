// Package logging builds the zerolog logger the daemon passes to the
// indexer, picking a console writer or JSON the way
// tclemos-pebble-bench's main.go does for dev and production.
package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a logger writing to stderr: a pretty console writer when
// format is "console", raw JSON lines otherwise. level must be one of
// debug/info/warn/error.
func New(level, format string) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("logging: invalid log level %q: %w", level, err)
	}

	var logger zerolog.Logger
	if strings.ToLower(strings.TrimSpace(format)) == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(parsed).With().Timestamp().Logger(), nil
}
