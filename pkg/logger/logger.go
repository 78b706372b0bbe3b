package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var base = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the process logger. Development gets a console writer
// and debug level, everything else JSON at info level.
func Init(environment string) {
	if environment == "development" || environment == "dev" {
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger().Level(zerolog.DebugLevel)
		return
	}
	base = zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// SetOutput redirects all log output, mostly useful in tests.
func SetOutput(w io.Writer) {
	base = base.Output(w)
}

// Log returns the underlying structured logger.
func Log() *zerolog.Logger {
	return &base
}

func Info(format string, v ...interface{}) {
	base.Info().Msgf(format, v...)
}

func Error(format string, v ...interface{}) {
	base.Error().Msgf(format, v...)
}

func Debug(format string, v ...interface{}) {
	base.Debug().Msgf(format, v...)
}

func Warn(format string, v ...interface{}) {
	base.Warn().Msgf(format, v...)
}

// SideEffectFailed records a failure that was swallowed on purpose, such as a
// notification write or a rating summary refresh.
func SideEffectFailed(kind, entityID string, err error) {
	base.Warn().
		Str("side_effect", kind).
		Str("entity_id", entityID).
		Err(err).
		Msg("side effect failed")
}
