// SPDX-License-Identifier: MPL-2.0

// Package hooks runs user shell scripts around a build with the embedded
// mvdan.cc/sh interpreter, so hooks behave the same on every platform
// without a system shell.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/invowk/minipack/pkg/types"
)

// PostBuild names the hook run after a bundle has been written.
const PostBuild Name = "post_build"

// ErrHookFailed is the sentinel error wrapped by HookError.
var ErrHookFailed = errors.New("hook failed")

type (
	// Name identifies a hook in configuration and messages.
	Name string

	// Hook is a shell script bound to a build event.
	Hook struct {
		Name   Name
		Script string
	}

	// HookError reports a hook that could not run or exited non-zero.
	HookError struct {
		Name Name
		// ExitCode is the script's exit status; zero when it never ran.
		ExitCode types.ExitCode
		Err      error
	}

	// BuildInfo is exposed to post-build hooks as MINIPACK_* variables.
	BuildInfo struct {
		Entry       types.FilesystemPath
		OutFile     types.FilesystemPath
		Manifest    types.FilesystemPath
		Modules     int
		Bytes       int
		LoaderCache string
	}

	// Runner executes hooks.
	Runner struct {
		// Dir is the working directory; the process directory when empty
		Dir    string
		Stdout io.Writer
		Stderr io.Writer
		Logger *log.Logger
	}
)

// NewRunner creates a Runner writing to the process's stdout and stderr.
func NewRunner(dir string) *Runner {
	return &Runner{
		Dir:    dir,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: log.New(io.Discard),
	}
}

// Error implements the error interface.
func (e *HookError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s hook exited with status %d", e.Name, e.ExitCode)
	}
	return fmt.Sprintf("%s hook failed: %v", e.Name, e.Err)
}

// Unwrap exposes ErrHookFailed and the underlying cause.
func (e *HookError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrHookFailed}
	}
	return []error{ErrHookFailed, e.Err}
}

// Env returns the environment variables describing info.
func (info BuildInfo) Env() map[string]string {
	return map[string]string{
		"MINIPACK_ENTRY":        info.Entry.String(),
		"MINIPACK_OUT_FILE":     info.OutFile.String(),
		"MINIPACK_MANIFEST":     info.Manifest.String(),
		"MINIPACK_MODULES":      strconv.Itoa(info.Modules),
		"MINIPACK_BYTES":        strconv.Itoa(info.Bytes),
		"MINIPACK_LOADER_CACHE": info.LoaderCache,
	}
}

// Parse checks that script is valid POSIX/Bash syntax.
func Parse(name Name, script string) (*syntax.File, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), string(name))
	if err != nil {
		return nil, &HookError{Name: name, Err: fmt.Errorf("failed to parse script: %w", err)}
	}
	return prog, nil
}

// Run executes hook with the host environment extended by env. An empty
// script is a no-op.
func (r *Runner) Run(ctx context.Context, hook Hook, env map[string]string) error {
	if strings.TrimSpace(hook.Script) == "" {
		return nil
	}

	prog, err := Parse(hook.Name, hook.Script)
	if err != nil {
		return err
	}

	runner, err := interp.New(
		interp.Dir(r.Dir),
		interp.Env(expand.ListEnviron(mergeEnv(os.Environ(), env)...)),
		interp.StdIO(nil, r.Stdout, r.Stderr),
	)
	if err != nil {
		return &HookError{Name: hook.Name, Err: fmt.Errorf("failed to create interpreter: %w", err)}
	}

	r.logger().Debug("running hook", "hook", hook.Name)
	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &HookError{Name: hook.Name, ExitCode: types.ExitCode(status)}
		}
		return &HookError{Name: hook.Name, Err: err}
	}
	return nil
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard)
	}
	return r.Logger
}

// mergeEnv appends extra to base in a stable order. Later entries win in
// expand.ListEnviron.
func mergeEnv(base []string, extra map[string]string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := append([]string{}, base...)
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}
