// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/fang"
	"github.com/rogpeppe/go-internal/testscript"

	"github.com/invowk/minipack/internal/issue"
	"github.com/invowk/minipack/internal/runtime"
	"github.com/invowk/minipack/pkg/emit"
	"github.com/invowk/minipack/pkg/modgraph"
	"github.com/invowk/minipack/pkg/types"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"minipack": func() { os.Exit(Main()) },
	})
}

// TestScripts runs the CLI scripts in testdata/script against the in-process
// minipack command.
func TestScripts(t *testing.T) {
	t.Parallel()

	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			env.Setenv("NO_COLOR", "1")
			return nil
		},
	})
}

func TestSplitRunArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		dash      int
		prebuilt  bool
		wantEntry string
		wantArgs  []string
	}{
		{"no args", nil, -1, false, "", nil},
		{"entry only", []string{"a.ts"}, -1, false, "a.ts", []string{}},
		{"entry and script args", []string{"a.ts", "x", "y"}, 1, false, "a.ts", []string{"x", "y"}},
		{"dash first", []string{"x"}, 0, false, "", []string{"x"}},
		{"prebuilt bundle", []string{"x", "y"}, -1, true, "", []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			entry, args := splitRunArgs(tt.args, tt.dash, tt.prebuilt)
			if entry != tt.wantEntry {
				t.Errorf("entry = %q, want %q", entry, tt.wantEntry)
			}
			if !slices.Equal(args, tt.wantArgs) {
				t.Errorf("args = %q, want %q", args, tt.wantArgs)
			}
		})
	}
}

func TestClassifyBundleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantIssue issue.Id
		wantOp    string
	}{
		{
			name:      "missing entry",
			err:       &modgraph.ResolutionError{Specifier: "main.ts", Err: os.ErrNotExist},
			wantIssue: issue.EntryNotFoundId,
			wantOp:    "find entry module",
		},
		{
			name:      "missing import",
			err:       &modgraph.ResolutionError{Specifier: "./x", Importer: "/p/a.ts", Err: os.ErrNotExist},
			wantIssue: issue.ModuleNotFoundId,
			wantOp:    "resolve import",
		},
		{
			name:      "bare specifier",
			err:       &modgraph.ResolutionError{Specifier: "react", Importer: "/p/a.ts", Err: modgraph.ErrBareSpecifier},
			wantIssue: issue.PackageImportId,
			wantOp:    "bundle",
		},
		{
			name:      "compilation",
			err:       &modgraph.CompilationError{Path: "/p/a.ts", Phase: modgraph.PhaseTransform, Err: errors.New("syntax")},
			wantIssue: issue.CompilationFailedId,
			wantOp:    "compile module",
		},
		{
			name:      "compaction",
			err:       &emit.CompactionError{Err: errors.New("boom")},
			wantIssue: issue.CompactionFailedId,
			wantOp:    "minify bundle",
		},
		{
			name:      "permission",
			err:       &modgraph.ResolutionError{Specifier: "./x", Importer: "/p/a.ts", Err: os.ErrPermission},
			wantIssue: issue.PermissionDeniedId,
			wantOp:    "bundle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := classifyBundleError(tt.err, "main.ts")

			var exitErr *ExitError
			if !errors.As(err, &exitErr) || exitErr.Code != types.ExitFailure {
				t.Fatalf("classifyBundleError() = %v, want ExitError with code 1", err)
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("classifyBundleError() = %v, want ActionableError", err)
			}
			if ae.IssueID != tt.wantIssue {
				t.Errorf("IssueID = %v, want %v", ae.IssueID, tt.wantIssue)
			}
			if ae.Operation != tt.wantOp {
				t.Errorf("Operation = %q, want %q", ae.Operation, tt.wantOp)
			}
			if !errors.Is(err, tt.err) {
				t.Error("original error lost from chain")
			}
		})
	}
}

func TestClassifyRunError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want issue.Id
	}{
		{fmt.Errorf("%w: node", runtime.ErrRuntimeUnavailable), issue.NodeNotFoundId},
		{fmt.Errorf("%w: TypeError", runtime.ErrUncaughtException), issue.BundleExecutionFailedId},
	}
	for _, tt := range tests {
		var ae *issue.ActionableError
		if err := classifyRunError(tt.err); !errors.As(err, &ae) || ae.IssueID != tt.want {
			t.Errorf("classifyRunError(%v) issue = %v, want %v", tt.err, ae, tt.want)
		}
	}
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	app, err := NewApp(Dependencies{})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	app.errorHandler(&buf, fang.Styles{}, &ExitError{Code: 3})
	if buf.Len() != 0 {
		t.Errorf("ExitError without cause printed %q", buf.String())
	}

	ae := issue.NewErrorContext().
		WithOperation("bundle").
		WithResource("main.ts").
		WithSuggestion("Check the entry path").
		Wrap(errors.New("boom")).
		BuildError()
	app.errorHandler(&buf, fang.Styles{}, &ExitError{Code: 1, Err: ae})

	out := buf.String()
	for _, want := range []string{"Error:", "failed to bundle main.ts: boom", "Check the entry path"} {
		if !strings.Contains(out, want) {
			t.Errorf("errorHandler output missing %q:\n%s", want, out)
		}
	}
}
