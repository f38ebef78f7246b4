// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/invowk/minipack/internal/config"
	"github.com/invowk/minipack/internal/issue"
	"github.com/invowk/minipack/pkg/bundler"
	"github.com/invowk/minipack/pkg/emit"
	"github.com/invowk/minipack/pkg/types"
)

type (
	// overrides holds command-line values that take precedence over config.
	// Empty strings leave the configured value in place.
	overrides struct {
		out         string
		noMinify    bool
		loaderCache string
		manifest    string
		ext         string
	}

	// settings is the effective configuration of one command invocation.
	settings struct {
		entry          string
		out            types.FilesystemPath
		minify         bool
		policy         emit.CachePolicy
		manifest       types.FilesystemPath
		ext            string
		maxConcurrency int
		postBuild      string
	}
)

// resolveSettings merges configuration and flags. Flag paths are relative to the
// working directory; configured paths are relative to the project.
func (p *project) resolveSettings(entryArg string, o overrides) (*settings, error) {
	cfg := p.Config
	s := &settings{
		entry:          entryArg,
		out:            p.Resolve(cfg.OutFile),
		minify:         cfg.Minify && !o.noMinify,
		policy:         cfg.Loader.Cache,
		manifest:       p.Resolve(cfg.Manifest),
		ext:            cfg.Resolve.DefaultExtension,
		maxConcurrency: cfg.Resolve.MaxConcurrency,
		postBuild:      cfg.Hooks.PostBuild,
	}

	if s.entry == "" {
		s.entry = p.Resolve(cfg.Entry).String()
	}
	if s.entry == "" {
		return nil, &ExitError{Code: types.ExitUsage, Err: issue.NewErrorContext().
			WithOperation("find entry module").
			WithSuggestion("Pass the entry as an argument: minipack build src/index.ts").
			WithSuggestion("Or set 'entry' in " + config.FileName()).
			WithIssue(issue.EntryNotFoundId).
			Wrap(errors.New("no entry module given")).
			BuildError()}
	}

	if o.out != "" {
		s.out = types.FilesystemPath(o.out)
	}
	if o.manifest != "" {
		s.manifest = types.FilesystemPath(o.manifest)
	}
	if o.ext != "" {
		s.ext = o.ext
	}
	if o.loaderCache != "" {
		policy, err := emit.ParseCachePolicy(o.loaderCache)
		if err != nil {
			return nil, &ExitError{Code: types.ExitUsage, Err: issue.NewErrorContext().
				WithOperation("parse --loader-cache").
				WithResource(o.loaderCache).
				WithSuggestion("Use 'exports' (default) or 'reexecute'").
				WithIssue(issue.InvalidLoaderCacheId).
				Wrap(err).
				BuildError()}
		}
		s.policy = policy
	}
	return s, nil
}

func (s *settings) bundlerOptions(logger *log.Logger) []bundler.Option {
	return []bundler.Option{
		bundler.WithMinify(s.minify),
		bundler.WithCachePolicy(s.policy),
		bundler.WithLogger(logger),
		bundler.WithDefaultExtension(s.ext),
		bundler.WithMaxConcurrency(s.maxConcurrency),
	}
}
