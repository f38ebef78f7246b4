// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invowk/minipack/internal/config"
	"github.com/invowk/minipack/internal/hooks"
	"github.com/invowk/minipack/internal/issue"
	"github.com/invowk/minipack/internal/manifest"
	"github.com/invowk/minipack/pkg/bundler"
	"github.com/invowk/minipack/pkg/types"
)

type buildFlags struct {
	overrides
	noHooks bool
}

// newBuildCommand creates the `minipack build` command.
func newBuildCommand(app *App) *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:     "build [entry]",
		Aliases: []string{"bundle"},
		Short:   "Bundle an entry module and everything it imports",
		Long: `Bundle an entry module and everything it imports into one script.

The entry defaults to 'entry' in minipack.cue. The bundle is minified unless
--no-minify is given, and is written to dist/bundle.js unless -o says
otherwise ('-o -' prints it). After a successful write the post_build hook
from minipack.cue runs with MINIPACK_ENTRY, MINIPACK_OUT_FILE,
MINIPACK_MODULES and MINIPACK_BYTES set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), app, flags, firstArg(args))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.out, "out", "o", "", "output file, or - for stdout (default dist/bundle.js)")
	f.BoolVar(&flags.noMinify, "no-minify", false, "emit the bundle without minification")
	f.StringVar(&flags.loaderCache, "loader-cache", "", "require semantics of the loader: exports or reexecute")
	f.StringVar(&flags.manifest, "manifest", "", "write a TOML build manifest to this path")
	f.StringVar(&flags.ext, "ext", "", "extension for extension-less imports (default .ts)")
	f.BoolVar(&flags.noHooks, "no-hooks", false, "skip the post_build hook")

	return cmd
}

func runBuild(ctx context.Context, app *App, flags *buildFlags, entryArg string) error {
	p, err := app.openProject(ctx)
	if err != nil {
		return err
	}
	s, err := p.resolveSettings(entryArg, flags.overrides)
	if err != nil {
		return err
	}

	res, err := bundler.Bundle(ctx, s.entry, s.bundlerOptions(p.logger)...)
	if err != nil {
		return classifyBundleError(err, s.entry)
	}

	if err := writeBundle(app.stdout, s.out, res.Code); err != nil {
		return writeError(err, "write bundle", s.out)
	}

	if s.manifest != "" {
		m := manifest.New(res, manifest.Options{
			BaseDir:     absDir(p.Dir),
			BundlePath:  s.out,
			Minified:    s.minify,
			LoaderCache: s.policy.String(),
		})
		if err := manifest.Write(s.manifest, m); err != nil {
			return writeError(err, "write manifest", s.manifest)
		}
	}

	if s.out != config.StdoutPath {
		fmt.Fprintf(app.stderr, "%s %s (%d modules, %d bytes)\n",
			SuccessStyle.Render("Bundled"), PathStyle.Render(s.out.String()), res.Graph.Len(), len(res.Code))
	}

	if flags.noHooks || s.postBuild == "" {
		return nil
	}

	runner := hooks.NewRunner(p.Dir.String())
	runner.Stdout = app.stdout
	if s.out == config.StdoutPath {
		runner.Stdout = app.stderr
	}
	runner.Stderr = app.stderr
	runner.Logger = p.logger

	info := hooks.BuildInfo{
		Entry:       types.FilesystemPath(s.entry),
		OutFile:     s.out,
		Manifest:    s.manifest,
		Modules:     res.Graph.Len(),
		Bytes:       len(res.Code),
		LoaderCache: s.policy.String(),
	}
	if err := runner.Run(ctx, hooks.Hook{Name: hooks.PostBuild, Script: s.postBuild}, info.Env()); err != nil {
		return classifyHookError(err)
	}
	return nil
}

// writeBundle writes code to out, or to stdout when out is "-".
func writeBundle(stdout io.Writer, out types.FilesystemPath, code string) error {
	if out == config.StdoutPath {
		_, err := io.WriteString(stdout, code)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out.String()), 0o755); err != nil {
		return err
	}
	return os.WriteFile(out.String(), []byte(code), 0o644)
}

func writeError(err error, op string, path types.FilesystemPath) error {
	ec := issue.NewErrorContext().WithOperation(op).WithResource(path.String()).Wrap(err)
	if errors.Is(err, os.ErrPermission) {
		ec.WithIssue(issue.PermissionDeniedId).WithSuggestion("Choose another location with -o")
	}
	return &ExitError{Code: types.ExitFailure, Err: ec.BuildError()}
}

func absDir(dir types.FilesystemPath) types.FilesystemPath {
	abs, err := filepath.Abs(dir.String())
	if err != nil {
		return dir
	}
	return types.FilesystemPath(abs)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
