// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/invowk/minipack/internal/config"
	"github.com/invowk/minipack/internal/logging"
	"github.com/invowk/minipack/internal/runtime"
	"github.com/invowk/minipack/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every Cobra command handler receives an App.
	App struct {
		Config   config.Provider
		Runtimes *runtime.Registry
		stdout   io.Writer
		stderr   io.Writer

		// bound to the root command's persistent flags
		verbose    bool
		configPath string
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config   config.Provider
		Runtimes *runtime.Registry
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// project is the configuration a command runs with.
	project struct {
		*config.Loaded
		verbose bool
		logger  *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Runtimes == nil {
		deps.Runtimes = runtime.DefaultRegistry()
	}

	return &App{
		Config:   deps.Config,
		Runtimes: deps.Runtimes,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}, nil
}

// openProject loads the configuration selected by --config, or minipack.cue
// in the working directory.
func (a *App) openProject(ctx context.Context) (*project, error) {
	loaded, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(a.configPath),
	})
	if err != nil {
		return nil, &ExitError{Code: types.ExitUsage, Err: err}
	}

	verbose := a.verbose || loaded.Config.UI.Verbose
	return &project{
		Loaded:  loaded,
		verbose: verbose,
		logger:  logging.New(a.stderr, verbose),
	}, nil
}
