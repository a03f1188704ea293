// Package glog configures the process-wide structured logger.
//
// It is a thin wrapper around zerolog's global logger: parse a level,
// optionally switch to a human console writer, then hand back a
// component-scoped logger.
package glog

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Format selects the wire format of log output.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Init configures the global zerolog logger and returns a component-scoped
// child logger. level must parse via zerolog.ParseLevel ("debug", "info",
// "warn", "error"); an invalid level falls back to info rather than
// aborting, since a bad -logLevel flag shouldn't stop a graph run.
func Init(component string, level string, format Format) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if format == FormatConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return log.With().Str("component", component).Logger()
}
