// Package logger holds the shared zerolog instance for the farmtasks
// services. JSON output by default; human-readable console output outside
// production.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger instance.
var Log zerolog.Logger

func init() {
	Log = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("app", "farmtasks").
		Logger()

	if os.Getenv("APP_ENV") != "production" {
		Log = Log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// With returns a child logger tagged with a component name, so each service
// and package logs under its own "component" field.
func With(component string) zerolog.Logger {
	return Log.With().Str("component", component).Logger()
}
