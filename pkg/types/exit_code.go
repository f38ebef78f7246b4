// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitSuccess is returned when a build or run completes normally.
	ExitSuccess ExitCode = 0
	// ExitFailure is returned for bundling failures (resolution, compilation, compaction).
	ExitFailure ExitCode = 1
	// ExitUsage is returned for invalid command-line usage or configuration.
	ExitUsage ExitCode = 2
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

const maxExitCode ExitCode = 255

type (
	// ExitCode is the status minipack exits with, or the status a bundle
	// exited with under `minipack run`.
	ExitCode int

	// InvalidExitCodeError reports a status outside 0-255, such as the -1
	// of a process killed by a signal.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d out of range 0-%d", e.Value, maxExitCode)
}

func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate rejects statuses a process cannot report.
func (c ExitCode) Validate() error {
	if c < ExitSuccess || c > maxExitCode {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
