// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invowk/minipack/internal/issue"
	"github.com/invowk/minipack/internal/runtime"
	"github.com/invowk/minipack/pkg/bundler"
	"github.com/invowk/minipack/pkg/types"
)

type runFlags struct {
	overrides
	bundle string
	node   bool
}

// newRunCommand creates the `minipack run` command.
func newRunCommand(app *App) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [entry] [-- args...]",
		Short: "Bundle an entry in memory and execute it",
		Long: `Bundle an entry in memory and execute it.

The bundle runs in an embedded JavaScript VM that provides console and a
minimal process object (argv, env, cwd, exit). Use --node to run it with
the Node.js binary on PATH instead, or --bundle to execute an existing
bundle file. Arguments after -- are passed to the script as process.argv.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, scriptArgs := splitRunArgs(args, cmd.ArgsLenAtDash(), flags.bundle != "")
			return runRun(cmd.Context(), app, flags, entry, scriptArgs)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.bundle, "bundle", "", "execute this bundle file instead of building one")
	f.BoolVar(&flags.node, "node", false, "execute with the host node binary")
	f.BoolVar(&flags.noMinify, "no-minify", false, "skip minification of the in-memory bundle")
	f.StringVar(&flags.loaderCache, "loader-cache", "", "require semantics of the loader: exports or reexecute")
	f.StringVar(&flags.ext, "ext", "", "extension for extension-less imports (default .ts)")

	return cmd
}

// splitRunArgs separates the entry from script arguments. Everything after
// "--" belongs to the script, as do all arguments when a prebuilt bundle is
// given.
func splitRunArgs(args []string, dash int, prebuilt bool) (entry string, scriptArgs []string) {
	if prebuilt {
		return "", args
	}
	if dash == 0 || len(args) == 0 {
		return "", args
	}
	return args[0], args[1:]
}

func runRun(ctx context.Context, app *App, flags *runFlags, entry string, scriptArgs []string) error {
	p, err := app.openProject(ctx)
	if err != nil {
		return err
	}

	code, filename, err := loadOrBuild(ctx, p, flags, entry)
	if err != nil {
		return err
	}

	typ := runtime.RuntimeTypeVirtual
	if flags.node {
		typ = runtime.RuntimeTypeNative
	}

	ectx := runtime.NewExecutionContext(ctx, code)
	ectx.Filename = filename
	ectx.Args = scriptArgs
	ectx.Stdout = app.stdout
	ectx.Stderr = app.stderr

	p.logger.Debug("running bundle", "runtime", typ, "bytes", len(code))
	result := app.Runtimes.Execute(typ, ectx)
	if result.Error != nil {
		return classifyRunError(result.Error)
	}
	if !result.ExitCode.IsSuccess() {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}

func loadOrBuild(ctx context.Context, p *project, flags *runFlags, entry string) (code, filename string, err error) {
	if flags.bundle != "" {
		data, err := os.ReadFile(flags.bundle)
		if err != nil {
			return "", "", &ExitError{Code: types.ExitFailure, Err: issue.NewErrorContext().
				WithOperation("read bundle").
				WithResource(flags.bundle).
				WithSuggestion("Build one first with 'minipack build'").
				WithIssue(issue.BundleExecutionFailedId).
				Wrap(err).
				BuildError()}
		}
		return string(data), filepath.Base(flags.bundle), nil
	}

	s, err := p.resolveSettings(entry, flags.overrides)
	if err != nil {
		return "", "", err
	}
	res, err := bundler.Bundle(ctx, s.entry, s.bundlerOptions(p.logger)...)
	if err != nil {
		return "", "", classifyBundleError(err, s.entry)
	}
	return res.Code, filepath.Base(s.entry), nil
}
