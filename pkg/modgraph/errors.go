// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"errors"
	"fmt"

	"github.com/invowk/minipack/pkg/types"
)

const (
	// PhaseTransform identifies a Transformer failure.
	PhaseTransform Phase = "transform"
	// PhaseParse identifies an ImportParser failure.
	PhaseParse Phase = "parse"
)

var (
	// ErrResolution is wrapped by every ResolutionError.
	ErrResolution = errors.New("module resolution failed")
	// ErrCompilation is wrapped by every CompilationError.
	ErrCompilation = errors.New("module compilation failed")
	// ErrBareSpecifier is returned for imports that name a package instead of
	// a relative or absolute file.
	ErrBareSpecifier = errors.New("package imports are not supported; use a relative path")
)

type (
	// Phase names the source-processing step that failed.
	Phase string

	// ResolutionError reports an import that could not be turned into a
	// readable file. For the entry module Specifier is the entry argument and
	// Importer is empty.
	ResolutionError struct {
		Specifier string
		Importer  types.FilesystemPath
		// Path is the canonical path that was attempted, when one was computed.
		Path types.FilesystemPath
		Err  error
	}

	// CompilationError reports a Transformer or ImportParser failure.
	CompilationError struct {
		Path  types.FilesystemPath
		Phase Phase
		Err   error
	}
)

func (e *ResolutionError) Error() string {
	target := ""
	if e.Path != "" {
		target = fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Importer == "" {
		return fmt.Sprintf("cannot resolve entry %q%s: %v", e.Specifier, target, e.Err)
	}
	return fmt.Sprintf("cannot resolve %q imported by %s%s: %v", e.Specifier, e.Importer, target, e.Err)
}

// Unwrap exposes both ErrResolution and the underlying cause.
func (e *ResolutionError) Unwrap() []error {
	return []error{ErrResolution, e.Err}
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Path, e.Err)
}

// Unwrap exposes both ErrCompilation and the underlying diagnostic.
func (e *CompilationError) Unwrap() []error {
	return []error{ErrCompilation, e.Err}
}
