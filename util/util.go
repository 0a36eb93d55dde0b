package util

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger.
//
// Writes human-readable lines to stderr.  Replace it (or change its
// level with SetLevel) before constructing patterns or starting a
// service if you want something else.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
	With().
	Timestamp().
	Logger().
	Level(zerolog.InfoLevel)

// Logging is a clumsy switch that affects what Logf does.
//
// If Logging is true, then Logf logs at debug level even if the
// Logger's level is higher.
var Logging = false

// SetLevel parses a level name ("debug", "info", "warn", ...) and
// applies it to Logger.
func SetLevel(name string) error {
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return err
	}
	Logger = Logger.Level(level)
	return nil
}

// Logf is a silly utility function that logs if Logging is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	l := Logger.Level(zerolog.DebugLevel)
	l.Debug().Msgf(format, args...)
}
