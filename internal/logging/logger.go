// Package logging builds the structured logger shared by the CLI commands,
// the converter and the HTTP server.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	// Level is "debug", "info", "warn" or "error". Unknown values fall back
	// to info.
	Level string

	// Verbose forces debug level.
	Verbose bool

	// Output defaults to os.Stderr.
	Output io.Writer

	// Prefix is printed before every message, e.g. "converter".
	Prefix string
}

// New returns a levelled key/value logger.
func New(opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if opts.Verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
