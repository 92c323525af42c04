// Package logging builds the zerolog loggers used by the command line tools.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the logger output.
type Options struct {
	// Out defaults to os.Stderr
	Out io.Writer

	// JSON switches from the console writer to JSON lines
	JSON bool

	// Verbose lowers the level from info to debug
	Verbose bool
}

// New returns a timestamped logger for the given options.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything, for tests and library use.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
