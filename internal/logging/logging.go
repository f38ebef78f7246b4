// SPDX-License-Identifier: MPL-2.0

// Package logging builds the charm loggers used by the minipack CLI.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Prefix is printed before every CLI log line.
const Prefix = "minipack"

// New returns a logger writing to w. Verbose loggers emit debug records
// (one per discovered module); others stop at info.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: false,
	})
}

// Discard returns a logger that drops every record.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
