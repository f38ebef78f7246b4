// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// chainErr wraps a sentinel and a cause at once, like the bundler's typed errors.
type chainErr struct {
	sentinel, cause error
}

func (e *chainErr) Error() string   { return "resolve ./a: " + e.cause.Error() }
func (e *chainErr) Unwrap() []error { return []error{e.sentinel, e.cause} }

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "bundle"},
			expected: "failed to bundle",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "bundle", Resource: "src/index.ts"},
			expected: "failed to bundle src/index.ts",
		},
		{
			name:     "full context",
			err:      &ActionableError{Operation: "write bundle", Resource: "dist/app.js", Cause: errors.New("disk full")},
			expected: "failed to write bundle dist/app.js: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("module resolution failed")
	cause := errors.New("no such file")
	err := NewErrorContext().
		WithOperation("bundle").
		WithResource("index.ts").
		Wrap(&chainErr{sentinel: sentinel, cause: cause}).
		BuildError()

	if !errors.Is(err, sentinel) || !errors.Is(err, cause) {
		t.Error("errors.Is should see through to every wrapped error")
	}
	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("read index.ts: %w", &chainErr{
		sentinel: errors.New("sentinel"),
		cause:    errors.New("permission denied"),
	})
	err := NewErrorContext().
		WithOperation("bundle").
		WithResource("index.ts").
		WithSuggestion("Check the file permissions").
		WithSuggestion("Run with --verbose").
		Wrap(cause).
		Build()

	short := err.Format(false)
	for _, want := range []string{"failed to bundle index.ts: read index.ts", "  • Check the file permissions", "  • Run with --verbose"} {
		if !strings.Contains(short, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, short)
		}
	}
	if strings.Contains(short, "Error chain") {
		t.Errorf("Format(false) should not include the chain:\n%s", short)
	}

	long := err.Format(true)
	for _, want := range []string{"Error chain:", "1. read index.ts", "2. resolve ./a: permission denied", "3. permission denied"} {
		if !strings.Contains(long, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, long)
		}
	}
	if strings.Contains(long, "sentinel") {
		t.Errorf("Format(true) should follow the cause, not the sentinel:\n%s", long)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without an operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without an operation should return a nil error")
	}

	err := NewErrorContext().
		WithOperation("load config").
		WithIssue(ConfigLoadFailedId).
		Build()
	if err.IssueID != ConfigLoadFailedId {
		t.Errorf("IssueID = %d, want %d", err.IssueID, ConfigLoadFailedId)
	}
	if err.Issue() != Get(ConfigLoadFailedId) {
		t.Error("Issue() should return the catalog entry")
	}
	if len(err.Suggestions) != 0 {
		t.Errorf("Suggestions = %v, want none", err.Suggestions)
	}
	if (&ActionableError{Operation: "x"}).Issue() != nil {
		t.Error("Issue() should be nil when no issue is linked")
	}
}
