// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/invowk/minipack/pkg/emit"
	"github.com/invowk/minipack/pkg/modgraph"
	"github.com/invowk/minipack/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultOutFile is where bundles are written when nothing else is set.
	DefaultOutFile types.FilesystemPath = "dist/bundle.js"
	// StdoutPath selects standard output as the bundle destination.
	StdoutPath types.FilesystemPath = "-"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidLoadOptions is the sentinel error wrapped by InvalidLoadOptionsError.
	ErrInvalidLoadOptions = errors.New("invalid load options")
)

type (
	// ColorScheme selects the palette for styled output.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError collects every field-level problem of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// InvalidLoadOptionsError collects every field-level problem of LoadOptions.
	InvalidLoadOptionsError struct {
		FieldErrors []error
	}

	// Config is the effective minipack configuration: defaults, overlaid by
	// minipack.cue, overlaid by MINIPACK_* environment variables. Command-line
	// flags are applied on top by the CLI.
	Config struct {
		Entry    types.FilesystemPath `json:"entry" mapstructure:"entry"`
		OutFile  types.FilesystemPath `json:"out_file" mapstructure:"out_file"`
		Minify   bool                 `json:"minify" mapstructure:"minify"`
		Resolve  ResolveConfig        `json:"resolve" mapstructure:"resolve"`
		Loader   LoaderConfig         `json:"loader" mapstructure:"loader"`
		Manifest types.FilesystemPath `json:"manifest" mapstructure:"manifest"`
		Hooks    HooksConfig          `json:"hooks" mapstructure:"hooks"`
		UI       UIConfig             `json:"ui" mapstructure:"ui"`
	}

	// ResolveConfig controls module resolution.
	ResolveConfig struct {
		DefaultExtension string `json:"default_extension" mapstructure:"default_extension"`
		MaxConcurrency   int    `json:"max_concurrency" mapstructure:"max_concurrency"`
	}

	// LoaderConfig controls the runtime loader embedded in bundles.
	LoaderConfig struct {
		Cache emit.CachePolicy `json:"cache" mapstructure:"cache"`
	}

	// HooksConfig holds shell scripts run around a build.
	HooksConfig struct {
		PostBuild string `json:"post_build" mapstructure:"post_build"`
	}

	// UIConfig controls terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		OutFile: DefaultOutFile,
		Minify:  true,
		Resolve: ResolveConfig{
			DefaultExtension: modgraph.DefaultExtension,
			MaxConcurrency:   modgraph.DefaultMaxConcurrency,
		},
		Loader: LoaderConfig{
			Cache: emit.DefaultCachePolicy,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// Validate returns an error if c is not a known color scheme.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate checks the constraints that also hold for values coming from the
// environment, which bypass the CUE schema.
func (c Config) Validate() error {
	var errs []error
	if err := c.OutFile.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("out_file: %w", err))
	}
	if ext := c.Resolve.DefaultExtension; ext != "" && !strings.HasPrefix(ext, ".") {
		errs = append(errs, fmt.Errorf("resolve.default_extension: %q must start with a dot", ext))
	}
	if n := c.Resolve.MaxConcurrency; n < 1 {
		errs = append(errs, fmt.Errorf("resolve.max_concurrency: %d must be at least 1", n))
	}
	if err := c.Loader.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("loader.cache: %w", err))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ui.color_scheme: %w", err))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return joinFieldErrors("invalid config", e.FieldErrors)
}

// Unwrap exposes ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Error implements the error interface.
func (e *InvalidLoadOptionsError) Error() string {
	return joinFieldErrors("invalid load options", e.FieldErrors)
}

// Unwrap exposes ErrInvalidLoadOptions and every field error.
func (e *InvalidLoadOptionsError) Unwrap() []error {
	return append([]error{ErrInvalidLoadOptions}, e.FieldErrors...)
}

func joinFieldErrors(prefix string, errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s: %s", prefix, strings.Join(msgs, "; "))
}
