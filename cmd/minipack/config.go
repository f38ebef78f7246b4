// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/minipack/internal/config"
	"github.com/invowk/minipack/internal/issue"
	"github.com/invowk/minipack/pkg/types"
)

// newConfigCommand creates the `minipack config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage minipack configuration",
		Long: `Manage minipack configuration.

Configuration is read from minipack.cue in the working directory, or from
the file given with --config. MINIPACK_* environment variables override it,
e.g. MINIPACK_LOADER_CACHE=reexecute or MINIPACK_RESOLVE_MAX_CONCURRENCY=4.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default minipack.cue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	p, err := app.openProject(ctx)
	if err != nil {
		return err
	}

	source := "defaults"
	if p.Path != "" {
		source = p.Path.String()
	}
	fmt.Fprintf(app.stdout, "// source: %s\n", source)
	fmt.Fprint(app.stdout, config.GenerateCUE(p.Config))
	return nil
}

func initConfig(app *App, force bool) error {
	path := types.FilesystemPath(app.configPath)
	if path == "" {
		path = types.FilesystemPath(config.FileName())
	}

	if err := config.WriteDefault(path, force); err != nil {
		ec := issue.NewErrorContext().
			WithOperation("create configuration").
			WithResource(path.String()).
			Wrap(err)
		if errors.Is(err, config.ErrConfigExists) {
			ec.WithSuggestion("Use --force to overwrite it")
		}
		return &ExitError{Code: types.ExitFailure, Err: ec.BuildError()}
	}

	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created"), PathStyle.Render(path.String()))
	return nil
}

func showConfigPath(app *App) error {
	path, found := config.Locate(config.LoadOptions{ConfigFilePath: types.FilesystemPath(app.configPath)})
	if !found {
		fmt.Fprintf(app.stdout, "%s %s\n", path, SubtitleStyle.Render("(not found, using defaults)"))
		return nil
	}
	fmt.Fprintln(app.stdout, path)
	return nil
}
