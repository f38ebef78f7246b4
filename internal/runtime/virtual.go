// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dop251/goja"

	"github.com/invowk/minipack/pkg/types"
)

// DefaultMaxCallStackSize bounds JavaScript recursion in the virtual runtime.
// A bundle emitted with loader cache "reexecute" and a circular import hits
// this limit instead of exhausting the Go stack.
const DefaultMaxCallStackSize = 4096

var (
	// ErrUncaughtException is wrapped by errors for bundles that throw.
	ErrUncaughtException = errors.New("uncaught exception")
	// ErrInterrupted is wrapped when execution stops because the context ended.
	ErrInterrupted = errors.New("bundle execution interrupted")
)

type (
	// VirtualRuntime executes bundles in an embedded goja VM. Only the globals
	// a self-contained bundle needs are provided: console and a small
	// process object (argv, env, cwd, exit, exitCode).
	VirtualRuntime struct {
		// MaxCallStackSize overrides DefaultMaxCallStackSize when positive
		MaxCallStackSize int
	}

	// exitRequest is the interrupt value raised by process.exit.
	exitRequest struct {
		code types.ExitCode
	}
)

// NewVirtualRuntime creates a new virtual runtime
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name
func (r *VirtualRuntime) Name() string {
	return string(RuntimeTypeVirtual)
}

// Available returns whether this runtime is available
func (r *VirtualRuntime) Available() bool {
	return true
}

// Validate checks that the bundle is present and parses
func (r *VirtualRuntime) Validate(ctx *ExecutionContext) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := goja.Compile(ctx.Filename, ctx.Bundle, false); err != nil {
		return fmt.Errorf("bundle syntax error: %w", err)
	}
	return nil
}

// Execute runs the bundle, streaming console output to ctx.Stdout and ctx.Stderr
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	return r.execute(ctx, ctx.Stdout, ctx.Stderr)
}

// ExecuteCapture runs the bundle and captures its console output
func (r *VirtualRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	var stdout, stderr bytes.Buffer
	result := r.execute(ctx, &stdout, &stderr)
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

func (r *VirtualRuntime) execute(ectx *ExecutionContext, stdout, stderr io.Writer) *Result {
	if err := ectx.Context.Err(); err != nil {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("%w: %w", ErrInterrupted, err))
	}

	vm := goja.New()
	vm.SetMaxCallStackSize(r.maxCallStackSize())

	if err := installConsole(vm, stdout, stderr); err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}
	process, err := installProcess(vm, ectx)
	if err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ectx.Context.Done():
			vm.Interrupt(ectx.Context.Err())
		case <-done:
		}
	}()

	if _, err := vm.RunScript(ectx.Filename, ectx.Bundle); err != nil {
		return interpretError(err)
	}

	if code := process.Get("exitCode"); code != nil && !goja.IsUndefined(code) && !goja.IsNull(code) {
		return NewExitCodeResult(types.ExitCode(code.ToInteger()))
	}
	return NewExitCodeResult(types.ExitSuccess)
}

func (r *VirtualRuntime) maxCallStackSize() int {
	if r.MaxCallStackSize > 0 {
		return r.MaxCallStackSize
	}
	return DefaultMaxCallStackSize
}

func interpretError(err error) *Result {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		switch v := interrupted.Value().(type) {
		case exitRequest:
			return NewExitCodeResult(v.code)
		case error:
			return NewErrorResult(types.ExitFailure, fmt.Errorf("%w: %w", ErrInterrupted, v))
		}
	}
	return NewErrorResult(types.ExitFailure, fmt.Errorf("%w: %w", ErrUncaughtException, err))
}

func installConsole(vm *goja.Runtime, stdout, stderr io.Writer) error {
	stringify, _ := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("stringify"))

	format := func(args []goja.Value) string {
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = formatValue(vm, stringify, arg)
		}
		return strings.Join(parts, " ")
	}
	printer := func(w io.Writer) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			fmt.Fprintln(w, format(call.Arguments))
			return goja.Undefined()
		}
	}

	console := vm.NewObject()
	for name, w := range map[string]io.Writer{
		"log":   stdout,
		"info":  stdout,
		"debug": stdout,
		"warn":  stderr,
		"error": stderr,
	} {
		if err := console.Set(name, printer(w)); err != nil {
			return fmt.Errorf("failed to install console.%s: %w", name, err)
		}
	}
	return vm.Set("console", console)
}

// formatValue renders plain objects and arrays as JSON and everything else
// through its string conversion.
func formatValue(vm *goja.Runtime, stringify goja.Callable, v goja.Value) string {
	if goja.IsUndefined(v) || goja.IsNull(v) || stringify == nil {
		return v.String()
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}
	if _, isFunc := goja.AssertFunction(obj); isFunc {
		return v.String()
	}
	if class := obj.ClassName(); class != "Object" && class != "Array" {
		return v.String()
	}
	out, err := stringify(goja.Undefined(), obj)
	if err != nil || goja.IsUndefined(out) {
		return v.String()
	}
	return out.String()
}

func installProcess(vm *goja.Runtime, ectx *ExecutionContext) (*goja.Object, error) {
	process := vm.NewObject()

	argv := append([]string{"minipack", ectx.Filename}, ectx.Args...)
	env := buildEnv(ectx.Env)

	setters := []struct {
		name  string
		value any
	}{
		{"argv", argv},
		{"env", env},
		{"cwd", func() string {
			if ectx.WorkDir != "" {
				return ectx.WorkDir
			}
			wd, _ := os.Getwd()
			return wd
		}},
		{"exit", func(call goja.FunctionCall) goja.Value {
			code := types.ExitSuccess
			if arg := call.Argument(0); !goja.IsUndefined(arg) {
				code = types.ExitCode(arg.ToInteger())
			} else if ec := process.Get("exitCode"); ec != nil && !goja.IsUndefined(ec) && !goja.IsNull(ec) {
				code = types.ExitCode(ec.ToInteger())
			}
			vm.Interrupt(exitRequest{code: code})
			return goja.Undefined()
		}},
	}
	for _, s := range setters {
		if err := process.Set(s.name, s.value); err != nil {
			return nil, fmt.Errorf("failed to install process.%s: %w", s.name, err)
		}
	}
	if err := vm.Set("process", process); err != nil {
		return nil, err
	}
	return process, nil
}
