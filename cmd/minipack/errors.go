// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/invowk/minipack/internal/hooks"
	"github.com/invowk/minipack/internal/issue"
	"github.com/invowk/minipack/internal/runtime"
	"github.com/invowk/minipack/pkg/emit"
	"github.com/invowk/minipack/pkg/modgraph"
	"github.com/invowk/minipack/pkg/types"
)

// classifyBundleError maps graph and emit failures to actionable errors
// linked to the issue catalog.
func classifyBundleError(err error, entry string) error {
	if errors.Is(err, context.Canceled) {
		return &ExitError{Code: types.ExitFailure, Err: err}
	}

	ec := issue.NewErrorContext().WithOperation("bundle").WithResource(entry).Wrap(err)

	var resErr *modgraph.ResolutionError
	var compErr *modgraph.CompilationError
	switch {
	case errors.Is(err, os.ErrPermission):
		ec.WithIssue(issue.PermissionDeniedId).
			WithSuggestion("Check read permissions on the project directory")
	case errors.Is(err, modgraph.ErrBareSpecifier):
		if errors.As(err, &resErr) {
			ec.WithResource(resErr.Importer.String())
		}
		ec.WithIssue(issue.PackageImportId).
			WithSuggestion("Import files with a relative path such as './lib/index.ts'")
	case errors.As(err, &resErr) && resErr.Importer == "":
		ec.WithOperation("find entry module").
			WithIssue(issue.EntryNotFoundId).
			WithSuggestion("Check the entry path, or set 'entry' in minipack.cue")
	case errors.As(err, &resErr):
		ec.WithOperation("resolve import").
			WithResource(resErr.Importer.String()).
			WithIssue(issue.ModuleNotFoundId).
			WithSuggestion("Check the spelling of '" + resErr.Specifier + "' and that the file exists").
			WithSuggestion("Extension-less imports get the default extension (--ext)")
	case errors.As(err, &compErr):
		ec.WithOperation("compile module").
			WithResource(compErr.Path.String()).
			WithIssue(issue.CompilationFailedId)
	case errors.Is(err, emit.ErrCompaction):
		ec.WithOperation("minify bundle").
			WithIssue(issue.CompactionFailedId).
			WithSuggestion("Retry with --no-minify to inspect the unminified bundle")
	}

	return &ExitError{Code: types.ExitFailure, Err: ec.BuildError()}
}

// classifyRunError maps runtime failures to actionable errors.
func classifyRunError(err error) error {
	ec := issue.NewErrorContext().WithOperation("run bundle").Wrap(err)
	switch {
	case errors.Is(err, runtime.ErrRuntimeUnavailable):
		ec.WithIssue(issue.NodeNotFoundId).
			WithSuggestion("Install Node.js, or drop --node to use the embedded runtime")
	default:
		ec.WithIssue(issue.BundleExecutionFailedId)
		if errors.Is(err, runtime.ErrUncaughtException) {
			ec.WithSuggestion("Circular imports recurse forever with loader cache 'reexecute'; see 'minipack graph --cycles'")
		}
	}
	return &ExitError{Code: types.ExitFailure, Err: ec.BuildError()}
}

// classifyHookError maps post-build hook failures to actionable errors.
func classifyHookError(err error) error {
	code := types.ExitFailure
	var hookErr *hooks.HookError
	if errors.As(err, &hookErr) && hookErr.ExitCode != 0 {
		code = hookErr.ExitCode
	}
	return &ExitError{Code: code, Err: issue.NewErrorContext().
		WithOperation("run post_build hook").
		WithIssue(issue.PostBuildHookFailedId).
		WithSuggestion("Skip hooks with 'minipack build --no-hooks'").
		Wrap(err).
		BuildError()}
}
