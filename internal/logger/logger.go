package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup configures the global zerolog level and returns the root logger.
// Services derive component sub-loggers from it. format "pretty" writes
// console output for local development; anything else writes JSON lines.
// An unknown level falls back to info.
func Setup(level, format string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if format == "pretty" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(out).With().Timestamp().Caller().Logger()
}
