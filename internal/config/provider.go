// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"

	"github.com/invowk/minipack/pkg/fspath"
	"github.com/invowk/minipack/pkg/types"
)

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath types.FilesystemPath
		// Dir is the project directory searched for minipack.cue. The
		// working directory is used when empty.
		Dir types.FilesystemPath
	}

	// Loaded is a loaded configuration together with where it came from.
	Loaded struct {
		Config *Config
		// Path is the file that was read; empty when only defaults and the
		// environment apply.
		Path types.FilesystemPath
		// Dir is the directory relative paths in Config are resolved against:
		// the config file's directory, or the project directory.
		Dir types.FilesystemPath
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Loaded, error)
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider reading minipack.cue files.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	return loadWithOptions(ctx, opts)
}

// Validate rejects whitespace-only paths.
func (o LoadOptions) Validate() error {
	var errs []error
	if o.ConfigFilePath != "" {
		if err := o.ConfigFilePath.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("config file path: %w", err))
		}
	}
	if o.Dir != "" {
		if err := o.Dir.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("dir: %w", err))
		}
	}
	if len(errs) > 0 {
		return &InvalidLoadOptionsError{FieldErrors: errs}
	}
	return nil
}

// Resolve interprets p relative to l.Dir. Absolute paths, "-" and "" are
// returned unchanged.
func (l *Loaded) Resolve(p types.FilesystemPath) types.FilesystemPath {
	if p == "" || p == StdoutPath || fspath.IsAbs(p) {
		return p
	}
	return fspath.Join(l.Dir, p)
}
