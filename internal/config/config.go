// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/invowk/minipack/internal/issue"
	"github.com/invowk/minipack/pkg/cueutil"
	"github.com/invowk/minipack/pkg/fspath"
	"github.com/invowk/minipack/pkg/types"
)

const (
	// AppName is the application name.
	AppName = "minipack"
	// ConfigFileName is the name of the project file (without extension).
	ConfigFileName = "minipack"
	// ConfigFileExt is the project file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. MINIPACK_LOADER_CACHE.
	EnvPrefix = "MINIPACK"
)

// ErrConfigExists is returned by WriteDefault when the target already exists.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema []byte

// FileName returns the project file name, minipack.cue.
func FileName() string {
	return ConfigFileName + "." + ConfigFileExt
}

// Locate returns the project file selected by opts. An explicit
// ConfigFilePath is returned even when it does not exist; otherwise the
// second result reports whether minipack.cue was found in the project dir.
func Locate(opts LoadOptions) (types.FilesystemPath, bool) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, fileExists(opts.ConfigFilePath.String())
	}
	path := fspath.JoinStr(projectDir(opts), FileName())
	return path, fileExists(path.String())
}

// loadWithOptions performs option-driven config loading without touching
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	loaded := &Loaded{Dir: projectDir(opts)}

	path, found := Locate(opts)
	switch {
	case found:
		// The cause already starts with the file name.
		if err := loadCUEIntoViper(v, path.String()); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the values match the schema shown by 'minipack config init'").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		loaded.Path = path
		loaded.Dir = fspath.Dir(path)
	case opts.ConfigFilePath != "":
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path.String()).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Run 'minipack config init' to create " + FileName()).
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("config file not found: %w", fs.ErrNotExist)).
			BuildError()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Check " + EnvPrefix + "_* environment variables as well as " + FileName()).
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	loaded.Config = &cfg
	return loaded, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("entry", defaults.Entry.String())
	v.SetDefault("out_file", defaults.OutFile.String())
	v.SetDefault("minify", defaults.Minify)
	v.SetDefault("resolve.default_extension", defaults.Resolve.DefaultExtension)
	v.SetDefault("resolve.max_concurrency", defaults.Resolve.MaxConcurrency)
	v.SetDefault("loader.cache", defaults.Loader.Cache.String())
	v.SetDefault("manifest", defaults.Manifest.String())
	v.SetDefault("hooks.post_build", defaults.Hooks.PostBuild)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme.String())
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

// loadCUEIntoViper validates a CUE file against #Config and merges its
// contents into v. Fields absent from the file keep their defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config", cueutil.WithFilename(path))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func projectDir(opts LoadOptions) types.FilesystemPath {
	if opts.Dir != "" {
		return opts.Dir
	}
	return "."
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when force is set.
func WriteDefault(path types.FilesystemPath, force bool) error {
	if !force && fileExists(path.String()) {
		return fmt.Errorf("%s: %w", path, ErrConfigExists)
	}
	if err := os.MkdirAll(filepath.Dir(path.String()), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path.String(), []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration. Optional
// fields that are unset are written as comments so the file documents them.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// minipack project configuration\n")
	sb.WriteString("// Every field is optional; MINIPACK_* environment variables override them.\n\n")

	optionalString(&sb, "", "entry", cfg.Entry.String(), "src/index.ts")
	fmt.Fprintf(&sb, "out_file: %q\n", cfg.OutFile)
	fmt.Fprintf(&sb, "minify:   %v\n", cfg.Minify)
	optionalString(&sb, "", "manifest", cfg.Manifest.String(), "dist/manifest.toml")

	sb.WriteString("\nresolve: {\n")
	fmt.Fprintf(&sb, "\tdefault_extension: %q\n", cfg.Resolve.DefaultExtension)
	fmt.Fprintf(&sb, "\tmax_concurrency:   %d\n", cfg.Resolve.MaxConcurrency)
	sb.WriteString("}\n")

	sb.WriteString("\nloader: {\n")
	sb.WriteString("\t// \"exports\" or \"reexecute\"\n")
	fmt.Fprintf(&sb, "\tcache: %q\n", cfg.Loader.Cache)
	sb.WriteString("}\n")

	sb.WriteString("\nhooks: {\n")
	optionalString(&sb, "\t", "post_build", cfg.Hooks.PostBuild, "ls -l dist")
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func optionalString(sb *strings.Builder, indent, key, value, example string) {
	if value == "" {
		fmt.Fprintf(sb, "%s// %s: %q\n", indent, key, example)
		return
	}
	fmt.Fprintf(sb, "%s%s: %q\n", indent, key, value)
}
