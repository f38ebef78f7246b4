// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/invowk/minipack/pkg/platform"
	"github.com/invowk/minipack/pkg/types"
)

// DefaultNodeBinary is looked up on PATH when NativeRuntime.Node is empty.
const DefaultNodeBinary = "node"

// NativeRuntime executes bundles with the host's node binary. The bundle is
// piped to `node -` on stdin, so it cannot read interactive input.
type NativeRuntime struct {
	// Node overrides the node binary (name on PATH or absolute path)
	Node string
	// Sandbox routes node through the sandbox's host spawn wrapper. Inside
	// Flatpak, node is resolved on the host, not checked locally.
	Sandbox platform.Sandbox
}

// NewNativeRuntime creates a native runtime for the detected sandbox
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{Sandbox: platform.Detect()}
}

// Name returns the runtime name
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available returns whether node can be found
func (r *NativeRuntime) Available() bool {
	_, err := r.lookPath()
	return err == nil
}

// Validate checks if a bundle can be executed
func (r *NativeRuntime) Validate(ctx *ExecutionContext) error {
	return validateContext(ctx)
}

// Execute runs the bundle, streaming output to ctx.Stdout and ctx.Stderr
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	return r.execute(ctx, ctx.Stdout, ctx.Stderr)
}

// ExecuteCapture runs the bundle and captures its output
func (r *NativeRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	var stdout, stderr bytes.Buffer
	result := r.execute(ctx, &stdout, &stderr)
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

func (r *NativeRuntime) execute(ectx *ExecutionContext, stdout, stderr io.Writer) *Result {
	node, err := r.lookPath()
	if err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}

	args := append([]string{"-"}, ectx.Args...)
	name, args := r.Sandbox.HostCommand(node, args, EnvToSlice(ectx.Env), ectx.WorkDir)
	if r.Sandbox.Wrapped() {
		if name, err = exec.LookPath(name); err != nil {
			return NewErrorResult(types.ExitFailure, fmt.Errorf("%w: %w", ErrRuntimeUnavailable, err))
		}
	}
	cmd := exec.CommandContext(ectx.Context, name, args...)
	cmd.Dir = ectx.WorkDir
	cmd.Env = EnvToSlice(buildEnv(ectx.Env))
	cmd.Stdin = strings.NewReader(ectx.Bundle)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return extractExitCode(cmd.Run())
}

func (r *NativeRuntime) lookPath() (string, error) {
	node := r.Node
	if node == "" {
		node = DefaultNodeBinary
	}
	if r.Sandbox.Wrapped() {
		return node, nil
	}
	path, err := exec.LookPath(node)
	if err != nil {
		return "", fmt.Errorf("%w: node binary %q not found: %w", ErrRuntimeUnavailable, node, err)
	}
	return path, nil
}

// extractExitCode determines the exit code from a process execution error.
func extractExitCode(err error) *Result {
	if err == nil {
		return NewExitCodeResult(types.ExitSuccess)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := types.ExitCode(exitErr.ExitCode())
		if validateErr := code.Validate(); validateErr != nil {
			// Killed by a signal: ExitCode() reports -1.
			return NewErrorResult(types.ExitFailure, fmt.Errorf("node terminated: %w", err))
		}
		return NewExitCodeResult(code)
	}
	return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to execute node: %w", err))
}
