// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/invowk/minipack/pkg/fspath"
	"github.com/invowk/minipack/pkg/types"
)

const (
	// DefaultExtension is appended to module references that have no extension.
	DefaultExtension = ".ts"
	// DefaultMaxConcurrency bounds how many modules are loaded at once.
	DefaultMaxConcurrency = 8
)

type (
	// Builder resolves module graphs. A Builder holds only configuration and
	// collaborators; every Resolve call owns its own Graph, so one Builder may
	// serve concurrent calls.
	Builder struct {
		reader         FileReader
		transformer    Transformer
		parser         ImportParser
		logger         *log.Logger
		defaultExt     string
		baseDir        types.FilesystemPath
		maxConcurrency int
	}

	// Option configures a Builder.
	Option func(*Builder)

	// origin records how a module was first reached.
	origin struct {
		specifier string
		importer  types.FilesystemPath
	}

	// source is the collaborator output for one module.
	source struct {
		code       string
		specifiers []string
	}

	// resolution is the state of a single Resolve call.
	resolution struct {
		*Builder
		graph   *Graph
		origins []origin
	}
)

// WithLogger sets the logger used for discovery tracing.
func WithLogger(logger *log.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithDefaultExtension sets the extension appended to extension-less
// references. A missing leading dot is added.
func WithDefaultExtension(ext string) Option {
	return func(b *Builder) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		b.defaultExt = ext
	}
}

// WithBaseDir sets the directory a relative entry path is resolved against.
// The process working directory is used when unset.
func WithBaseDir(dir string) Option {
	return func(b *Builder) {
		b.baseDir = types.FilesystemPath(dir)
	}
}

// WithMaxConcurrency bounds the number of modules loaded concurrently.
// Values below 1 restore the default.
func WithMaxConcurrency(n int) Option {
	return func(b *Builder) {
		if n < 1 {
			n = DefaultMaxConcurrency
		}
		b.maxConcurrency = n
	}
}

// NewBuilder creates a Builder around the given collaborators.
func NewBuilder(reader FileReader, transformer Transformer, parser ImportParser, opts ...Option) *Builder {
	b := &Builder{
		reader:         reader,
		transformer:    transformer,
		parser:         parser,
		logger:         log.New(io.Discard),
		defaultExt:     DefaultExtension,
		maxConcurrency: DefaultMaxConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Resolve discovers every module reachable from entry and returns the
// completed graph. The first resolution or compilation error aborts the call;
// no partial graph is returned.
func (b *Builder) Resolve(ctx context.Context, entry string) (*Graph, error) {
	entryPath, err := b.canonicalEntry(entry)
	if err != nil {
		return nil, &ResolutionError{Specifier: entry, Err: err}
	}

	r := &resolution{Builder: b, graph: newGraph()}
	r.reserve(entryPath, origin{specifier: entry})

	frontier := []int{0}
	for depth := 0; len(frontier) > 0; depth++ {
		sources, err := r.loadFrontier(ctx, frontier)
		if err != nil {
			return nil, err
		}
		next, err := r.link(frontier, sources)
		if err != nil {
			return nil, err
		}
		b.logger.Debug("frontier linked", "depth", depth, "modules", len(frontier), "discovered", len(next))
		frontier = next
	}

	b.logger.Debug("module graph resolved", "entry", entryPath, "modules", r.graph.Len())
	return r.graph, nil
}

// reserve issues the next ID for path unless it already has one. It never
// blocks, so the memo check and the reservation cannot be interleaved with
// another discovery.
func (r *resolution) reserve(path types.FilesystemPath, from origin) (int, bool) {
	id, fresh := r.graph.reserve(path)
	if fresh {
		r.origins = append(r.origins, from)
	}
	return id, fresh
}

// loadFrontier reads, transforms and parses every module of the frontier
// concurrently. The graph is not mutated while loads are in flight.
func (r *resolution) loadFrontier(ctx context.Context, frontier []int) ([]source, error) {
	out := make([]source, len(frontier))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrency)
	for i, id := range frontier {
		g.Go(func() error {
			src, err := r.load(gctx, id)
			if err != nil {
				return err
			}
			out[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resolution) load(ctx context.Context, id int) (source, error) {
	mod := r.graph.modules[id]
	from := r.origins[id]
	filename := mod.Path.String()

	raw, err := r.reader.ReadFile(ctx, filename)
	if err != nil {
		return source{}, &ResolutionError{
			Specifier: from.specifier,
			Importer:  from.importer,
			Path:      mod.Path,
			Err:       err,
		}
	}

	var src source
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		code, err := r.transformer.Transform(gctx, raw, filename)
		if err != nil {
			return &CompilationError{Path: mod.Path, Phase: PhaseTransform, Err: err}
		}
		src.code = code
		return nil
	})
	g.Go(func() error {
		specs, err := r.parser.ParseImports(gctx, raw, filename)
		if err != nil {
			return &CompilationError{Path: mod.Path, Phase: PhaseParse, Err: err}
		}
		src.specifiers = specs
		return nil
	})
	if err := g.Wait(); err != nil {
		return source{}, err
	}

	r.logger.Debug("discovered module", "id", id, "path", filename, "imports", len(src.specifiers))
	return src, nil
}

// link finalizes the frontier's modules in ID order and reserves their
// imports in declaration order. It returns the newly reserved IDs.
func (r *resolution) link(frontier []int, sources []source) ([]int, error) {
	var next []int
	for i, id := range frontier {
		mod := r.graph.modules[id]
		mod.Code = sources[i].code
		for _, spec := range sources[i].specifiers {
			path, err := r.canonicalImport(mod.Path, spec)
			if err != nil {
				return nil, &ResolutionError{Specifier: spec, Importer: mod.Path, Err: err}
			}
			depID, fresh := r.reserve(path, origin{specifier: spec, importer: mod.Path})
			if fresh {
				next = append(next, depID)
			}
			mod.Dependencies.Set(spec, depID)
		}
	}
	return next, nil
}

func (b *Builder) canonicalEntry(entry string) (types.FilesystemPath, error) {
	p := types.FilesystemPath(entry)
	if err := p.Validate(); err != nil {
		return "", err
	}
	abs, err := fspath.AbsFrom(b.baseDir, types.FilesystemPath(filepath.FromSlash(entry)))
	if err != nil {
		return "", err
	}
	return fspath.WithDefaultExt(abs, b.defaultExt), nil
}

func (b *Builder) canonicalImport(importer types.FilesystemPath, spec string) (types.FilesystemPath, error) {
	if !isLocalSpecifier(spec) {
		return "", ErrBareSpecifier
	}
	native := filepath.FromSlash(spec)
	var p types.FilesystemPath
	if filepath.IsAbs(native) {
		p = fspath.Clean(types.FilesystemPath(native))
	} else {
		p = fspath.JoinStr(fspath.Dir(importer), native)
	}
	return fspath.WithDefaultExt(p, b.defaultExt), nil
}

func isLocalSpecifier(spec string) bool {
	switch {
	case spec == "." || spec == "..":
		return true
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"), strings.HasPrefix(spec, "/"):
		return true
	default:
		return false
	}
}
