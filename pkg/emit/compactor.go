// SPDX-License-Identifier: MPL-2.0

package emit

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrCompaction is wrapped by every CompactionError.
	ErrCompaction = errors.New("bundle compaction failed")
	// ErrEmptyGraph is returned when there is no entry module to emit.
	ErrEmptyGraph = errors.New("module graph is empty")
)

type (
	// Compactor rewrites a complete bundle into a smaller equivalent script.
	Compactor interface {
		Compact(ctx context.Context, code string) (string, error)
	}

	// CompactFunc adapts a function to Compactor.
	CompactFunc func(ctx context.Context, code string) (string, error)

	// Identity is a Compactor that returns its input unchanged.
	Identity struct{}

	// CompactionError reports a Compactor failure. No uncompacted fallback is
	// produced.
	CompactionError struct {
		Err error
	}
)

// Compact implements Compactor.
func (f CompactFunc) Compact(ctx context.Context, code string) (string, error) {
	return f(ctx, code)
}

// Compact implements Compactor.
func (Identity) Compact(ctx context.Context, code string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return code, nil
}

func (e *CompactionError) Error() string {
	return fmt.Sprintf("compact bundle: %v", e.Err)
}

// Unwrap exposes both ErrCompaction and the compactor's error.
func (e *CompactionError) Unwrap() []error {
	return []error{ErrCompaction, e.Err}
}
