// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/minipack/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the minipack command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minipack",
		Short: "A minimal JavaScript and TypeScript bundler",
		Long: TitleStyle.Render("minipack") + SubtitleStyle.Render(" - A minimal JavaScript and TypeScript bundler") + `

minipack follows the relative imports of an entry module, compiles every
module to CommonJS with esbuild and emits one self-contained script with a
small runtime loader.

` + SubtitleStyle.Render("Examples:") + `
  minipack build src/index.ts            Write dist/bundle.js
  minipack build src/index.ts -o -       Print the bundle
  minipack graph src/index.ts --cycles   Report circular imports
  minipack run src/index.ts              Bundle and execute in-process
  minipack config init                   Create minipack.cue`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is ./minipack.cue)")

	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newGraphCommand(app))
	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Main runs the CLI and returns the process exit code.
func Main() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(types.ExitFailure)
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return int(exitErr.Code)
		}
		return int(types.ExitFailure)
	}
	return int(types.ExitSuccess)
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Main())
}
