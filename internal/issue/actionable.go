// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing failure: the operation that failed,
	// the file it concerned, hints for fixing it, and optionally a catalog
	// Issue with the long explanation.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("find entry module").
	//		WithResource("src/index.ts").
	//		WithSuggestion("Check the entry path").
	//		WithIssue(issue.EntryNotFoundId).
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		Operation   string
		Resource    string
		Suggestions []string
		IssueID     Id
		Cause       error
	}

	// ErrorContext accumulates the fields of an ActionableError.
	ErrorContext struct {
		e ActionableError
	}
)

// NewErrorContext starts an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error renders "failed to <operation> [<resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to", e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	msg := strings.Join(parts, " ")
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ActionableError) Unwrap() error { return e.Cause }

// Issue returns the linked catalog entry, or nil.
func (e *ActionableError) Issue() *Issue { return Get(e.IssueID) }

// Format renders Error followed by one bulleted line per suggestion. In
// verbose mode the cause chain is appended, one numbered line per level.
// Where an error wraps several, the chain follows the last, which is the
// concrete cause by convention.
func (e *ActionableError) Format(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		sb.WriteByte('\n')
	}
	for _, s := range e.Suggestions {
		sb.WriteString("\n  • " + s)
	}

	if !verbose || e.Cause == nil {
		return sb.String()
	}
	sb.WriteString("\n\nError chain:")
	for i, err := 1, e.Cause; err != nil; i, err = i+1, lastCause(err) {
		fmt.Fprintf(&sb, "\n  %d. %s", i, err)
	}
	return sb.String()
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.e.Operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.e.Resource = res
	return c
}

// WithSuggestion appends one hint; call it once per hint.
func (c *ErrorContext) WithSuggestion(hint string) *ErrorContext {
	c.e.Suggestions = append(c.e.Suggestions, hint)
	return c
}

func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.e.IssueID = id
	return c
}

func (c *ErrorContext) Wrap(cause error) *ErrorContext {
	c.e.Cause = cause
	return c
}

// Build returns a copy of the accumulated error, or nil when no operation
// was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.e.Operation == "" {
		return nil
	}
	built := c.e
	built.Suggestions = append([]string(nil), c.e.Suggestions...)
	return &built
}

// BuildError is Build typed as error, keeping a nil result a nil interface.
func (c *ErrorContext) BuildError() error {
	if built := c.Build(); built != nil {
		return built
	}
	return nil
}

func lastCause(err error) error {
	if next := errors.Unwrap(err); next != nil {
		return next
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := multi.Unwrap(); len(errs) > 0 {
			return errs[len(errs)-1]
		}
	}
	return nil
}
