// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/fang"

	"github.com/invowk/minipack/internal/issue"
	"github.com/invowk/minipack/pkg/fspath"
	"github.com/invowk/minipack/pkg/types"
)

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// errorHandler renders command errors for fang. ExitErrors without a cause
// were already reported and print nothing.
func (a *App) errorHandler(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, a.verbose))

	var ae *issue.ActionableError
	if !a.verbose || !errors.As(err, &ae) {
		return
	}
	if entry := ae.Issue(); entry != nil {
		if rendered, renderErr := entry.Render("auto"); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}
}

// displayPath shortens p relative to dir when p lies beneath it.
func displayPath(dir, p types.FilesystemPath) string {
	if dir == "" {
		return p.String()
	}
	rel := fspath.Rel(dir, p)
	if fspath.IsAbs(rel) || strings.HasPrefix(rel.String(), "..") {
		return p.String()
	}
	return rel.String()
}
