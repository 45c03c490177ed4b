package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger for CLI runs. Verbose enables debug-level
// events (per-table progress detail, skipped-file accounting).
func New(verbose bool) zerolog.Logger {
	return NewWithOutput(os.Stderr, verbose)
}

// NewWithOutput is New with an explicit sink, used by tests.
func NewWithOutput(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// Nop returns a disabled logger for components constructed without one.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
