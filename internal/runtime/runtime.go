// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/invowk/minipack/pkg/types"
)

// Runtime type constants for different execution environments.
const (
	RuntimeTypeVirtual RuntimeType = "virtual"
	RuntimeTypeNative  RuntimeType = "native"
)

var (
	// ErrEmptyBundle is returned when there is no code to execute.
	ErrEmptyBundle = errors.New("bundle has no code to execute")
	// ErrRuntimeNotRegistered is returned by Registry.Get for unknown types.
	ErrRuntimeNotRegistered = errors.New("runtime not registered")
	// ErrRuntimeUnavailable is returned when a runtime cannot run on this host.
	ErrRuntimeUnavailable = errors.New("runtime not available")
)

type (
	// RuntimeType identifies the type of runtime.
	//
	//nolint:revive // RuntimeType is more descriptive than Type for external callers
	RuntimeType string

	// ExecutionContext contains all information needed to execute a bundle
	ExecutionContext struct {
		// Context is the Go context for cancellation
		Context context.Context
		// Bundle is the emitted bundle source
		Bundle string
		// Filename names the bundle in process.argv and error messages
		Filename string
		// Args are passed to the bundle after the filename in process.argv
		Args []string
		// Env contains additional environment variables
		Env map[string]string
		// Stdout is where to write standard output
		Stdout io.Writer
		// Stderr is where to write standard error
		Stderr io.Writer
		// WorkDir overrides the working directory of native processes
		WorkDir string
	}

	// Result contains the result of a bundle execution
	Result struct {
		// ExitCode is the process exit code
		ExitCode types.ExitCode
		// Error contains any error that occurred
		Error error
		// Output contains captured stdout (if captured)
		Output string
		// ErrOutput contains captured stderr (if captured)
		ErrOutput string
	}

	// Runtime defines the interface for bundle execution
	Runtime interface {
		// Name returns the runtime name
		Name() string
		// Execute runs a bundle in this runtime
		Execute(ctx *ExecutionContext) *Result
		// Available returns whether this runtime is available on the current system
		Available() bool
		// Validate checks if a bundle can be executed with this runtime
		Validate(ctx *ExecutionContext) error
	}

	// CapturingRuntime is implemented by runtimes that support capturing output.
	CapturingRuntime interface {
		// ExecuteCapture runs a bundle and captures stdout/stderr.
		ExecuteCapture(ctx *ExecutionContext) *Result
	}

	// Registry holds all available runtimes
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// NewExecutionContext creates a new execution context with defaults
func NewExecutionContext(ctx context.Context, bundle string) *ExecutionContext {
	return &ExecutionContext{
		Context:  ctx,
		Bundle:   bundle,
		Filename: "bundle.js",
		Env:      make(map[string]string),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Success returns true if the bundle executed successfully
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits requested by the bundle itself rather than
// infrastructure failures.
func NewExitCodeResult(code types.ExitCode) *Result {
	return &Result{ExitCode: code}
}

// NewRegistry creates a new runtime registry
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[RuntimeType]Runtime),
	}
}

// DefaultRegistry returns a registry holding the virtual and native runtimes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RuntimeTypeVirtual, NewVirtualRuntime())
	r.Register(RuntimeTypeNative, NewNativeRuntime())
	return r
}

// Register adds a runtime to the registry
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns a runtime by type
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRuntimeNotRegistered, typ)
	}
	return rt, nil
}

// Available returns all available runtimes, sorted by name
func (r *Registry) Available() []RuntimeType {
	var available []RuntimeType
	for typ, rt := range r.runtimes {
		if rt.Available() {
			available = append(available, typ)
		}
	}
	slices.Sort(available)
	return available
}

// Execute runs a bundle using the runtime registered under typ
func (r *Registry) Execute(typ RuntimeType, ctx *ExecutionContext) *Result {
	rt, err := r.Get(typ)
	if err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}

	if !rt.Available() {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("%w: %s", ErrRuntimeUnavailable, rt.Name()))
	}

	if err := rt.Validate(ctx); err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}

	return rt.Execute(ctx)
}

func validateContext(ctx *ExecutionContext) error {
	if ctx.Bundle == "" {
		return ErrEmptyBundle
	}
	if ctx.Context == nil {
		return errors.New("execution context has no context.Context")
	}
	return nil
}
