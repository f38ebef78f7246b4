// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/invowk/minipack/pkg/emit"
	"github.com/invowk/minipack/pkg/fspath"
	"github.com/invowk/minipack/pkg/jscompiler"
	"github.com/invowk/minipack/pkg/modgraph"
	"github.com/invowk/minipack/pkg/types"
)

type (
	// Bundler wires a graph builder and an emitter. It is safe for concurrent
	// use; no state is shared between Bundle calls.
	Bundler struct {
		reader         modgraph.FileReader
		transformer    modgraph.Transformer
		parser         modgraph.ImportParser
		compactor      emit.Compactor
		minify         bool
		policy         emit.CachePolicy
		logger         *log.Logger
		defaultExt     string
		baseDir        string
		maxConcurrency int
	}

	// Option configures a Bundler.
	Option func(*Bundler)

	// Result is a produced bundle.
	Result struct {
		// Code is the compacted bundle text.
		Code string
		// Graph is the resolved module graph the bundle was emitted from.
		Graph *modgraph.Graph
		// Diagnostics holds non-fatal findings, such as import cycles.
		Diagnostics []Diagnostic
	}
)

// WithReader replaces the filesystem reader.
func WithReader(r modgraph.FileReader) Option {
	return func(b *Bundler) { b.reader = r }
}

// WithTransformer replaces the module transformer.
func WithTransformer(t modgraph.Transformer) Option {
	return func(b *Bundler) { b.transformer = t }
}

// WithParser replaces the import parser.
func WithParser(p modgraph.ImportParser) Option {
	return func(b *Bundler) { b.parser = p }
}

// WithCompactor replaces the bundle compactor. It has no effect while
// minification is disabled.
func WithCompactor(c emit.Compactor) Option {
	return func(b *Bundler) { b.compactor = c }
}

// WithMinify toggles compaction of the finished bundle. It is on by default.
func WithMinify(minify bool) Option {
	return func(b *Bundler) { b.minify = minify }
}

// WithCachePolicy selects the loader's require semantics.
func WithCachePolicy(p emit.CachePolicy) Option {
	return func(b *Bundler) { b.policy = p }
}

// WithLogger sets the logger shared by the builder, the emitter and the
// bundler itself.
func WithLogger(logger *log.Logger) Option {
	return func(b *Bundler) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithDefaultExtension sets the extension appended to extension-less imports.
func WithDefaultExtension(ext string) Option {
	return func(b *Bundler) { b.defaultExt = ext }
}

// WithBaseDir sets the directory a relative entry is resolved against.
func WithBaseDir(dir string) Option {
	return func(b *Bundler) { b.baseDir = dir }
}

// WithMaxConcurrency bounds concurrent module loads.
func WithMaxConcurrency(n int) Option {
	return func(b *Bundler) { b.maxConcurrency = n }
}

// New creates a Bundler reading from the local filesystem and compiling with
// esbuild.
func New(opts ...Option) *Bundler {
	compiler := jscompiler.New()
	b := &Bundler{
		reader:         modgraph.OSFileReader{},
		transformer:    compiler,
		parser:         compiler,
		compactor:      compiler,
		minify:         true,
		policy:         emit.DefaultCachePolicy,
		logger:         log.New(io.Discard),
		defaultExt:     modgraph.DefaultExtension,
		maxConcurrency: modgraph.DefaultMaxConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bundle resolves every module reachable from entry and emits them as one
// script. Resolution, compilation and compaction errors are returned as-is;
// no partial result is produced.
func (b *Bundler) Bundle(ctx context.Context, entry string) (*Result, error) {
	start := time.Now()

	builder := modgraph.NewBuilder(b.reader, b.transformer, b.parser,
		modgraph.WithLogger(b.logger),
		modgraph.WithDefaultExtension(b.defaultExt),
		modgraph.WithBaseDir(b.baseDir),
		modgraph.WithMaxConcurrency(b.maxConcurrency),
	)
	graph, err := builder.Resolve(ctx, entry)
	if err != nil {
		return nil, err
	}

	diags := CycleDiagnostics(graph, b.policy)
	for _, d := range diags {
		b.logger.Warn(d.Message, "code", d.Code)
	}

	compactor := b.compactor
	if !b.minify {
		compactor = emit.Identity{}
	}
	emitter := emit.NewEmitter(compactor, emit.WithCachePolicy(b.policy), emit.WithLogger(b.logger))
	code, err := emitter.Emit(ctx, graph)
	if err != nil {
		return nil, err
	}

	b.logger.Info("bundle complete",
		"entry", displayPath(fspath.Dir(graph.Entry().Path), graph.Entry().Path),
		"modules", graph.Len(),
		"bytes", len(code),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return &Result{Code: code, Graph: graph, Diagnostics: diags}, nil
}

// Bundle builds entry with a Bundler configured by opts.
func Bundle(ctx context.Context, entry string, opts ...Option) (*Result, error) {
	return New(opts...).Bundle(ctx, entry)
}

// displayPath shortens p relative to dir when p lies beneath it.
func displayPath(dir, p types.FilesystemPath) string {
	rel := fspath.Rel(dir, p)
	if fspath.IsAbs(rel) || strings.HasPrefix(rel.String(), "..") {
		return p.String()
	}
	return rel.String()
}
