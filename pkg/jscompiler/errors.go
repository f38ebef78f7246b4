// SPDX-License-Identifier: MPL-2.0

package jscompiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// ErrDiagnostics is wrapped by every DiagnosticsError.
var ErrDiagnostics = errors.New("esbuild reported errors")

type (
	// Diagnostic is one esbuild error message.
	Diagnostic struct {
		File string
		// Line is 1-based; zero when esbuild reported no location.
		Line int
		// Column is 0-based, counted in bytes.
		Column int
		Text   string
	}

	// DiagnosticsError carries the errors esbuild reported for one call.
	DiagnosticsError struct {
		Diagnostics []Diagnostic
	}
)

func newDiagnosticsError(msgs []api.Message) *DiagnosticsError {
	diags := make([]Diagnostic, 0, len(msgs))
	for _, msg := range msgs {
		d := Diagnostic{Text: msg.Text}
		if loc := msg.Location; loc != nil {
			d.File = loc.File
			d.Line = loc.Line
			d.Column = loc.Column
		}
		diags = append(diags, d)
	}
	return &DiagnosticsError{Diagnostics: diags}
}

// String formats d as file:line:col: text.
func (d Diagnostic) String() string {
	if d.Line == 0 {
		if d.File == "" {
			return d.Text
		}
		return fmt.Sprintf("%s: %s", d.File, d.Text)
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Text)
}

func (e *DiagnosticsError) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Unwrap returns ErrDiagnostics for errors.Is() compatibility.
func (e *DiagnosticsError) Unwrap() error { return ErrDiagnostics }
