// Package logging builds the process-wide structured logger.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

const timeFormat = "2006-01-02 15:04:05"

/*
New returns a charmbracelet logger writing to w at the given level.
An unknown level falls back to info so a typo in the config never silences
the process. Callers own the returned logger and inject it; nothing here
touches the package-level default.
*/
func New(w io.Writer, level string, prefix string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           lvl,
		Prefix:          prefix,
	})
}

// Discard returns a logger that drops everything, for tests and tools that
// have nothing to say.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
