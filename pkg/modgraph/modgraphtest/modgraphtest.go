// SPDX-License-Identifier: MPL-2.0

// Package modgraphtest provides in-memory collaborators for exercising
// modgraph and the packages built on it without touching the filesystem or a
// real compiler.
package modgraphtest

import (
	"context"
	"io/fs"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/invowk/minipack/pkg/modgraph"
)

type (
	// Tree is an in-memory module tree. It implements modgraph.FileReader and
	// counts reads per path.
	Tree struct {
		mu    sync.Mutex
		files map[string]string
		reads map[string]int
	}

	// Passthrough is a Transformer that returns the source unchanged. Paths
	// listed in Fail return the mapped error instead.
	Passthrough struct {
		Fail map[string]error
	}

	// Scanner is an ImportParser that recognizes one `import ... from "x"`,
	// `import "x"` or `export ... from "x"` statement per line. Paths listed
	// in Fail return the mapped error instead.
	Scanner struct {
		Fail map[string]error
	}

	// Requires is an ImportParser for fixtures already written as CommonJS.
	// It reports the argument of every `require("x")` call in source order,
	// collapsing repeats.
	Requires struct{}
)

var (
	importLine  = regexp.MustCompile(`(?m)^\s*(?:import|export)\b(?:[^'"\n]*\bfrom)?\s*['"]([^'"]+)['"]`)
	requireCall = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)
)

// NewTree creates a Tree rooted at root. File names are slash-separated and
// relative to root.
func NewTree(root string, files map[string]string) *Tree {
	t := &Tree{
		files: make(map[string]string, len(files)),
		reads: make(map[string]int),
	}
	for name, content := range files {
		t.files[filepath.Join(root, filepath.FromSlash(name))] = content
	}
	return t
}

// ReadFile implements modgraph.FileReader.
func (t *Tree) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads[path]++
	content, ok := t.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(content), nil
}

// Reads returns how many times path was read.
func (t *Tree) Reads(path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reads[path]
}

// Transform implements modgraph.Transformer.
func (p Passthrough) Transform(_ context.Context, source []byte, filename string) (string, error) {
	if err, ok := p.Fail[filename]; ok {
		return "", err
	}
	return string(source), nil
}

// ParseImports implements modgraph.ImportParser.
func (s Scanner) ParseImports(_ context.Context, source []byte, filename string) ([]string, error) {
	if err, ok := s.Fail[filename]; ok {
		return nil, err
	}
	specs := []string{}
	for _, m := range importLine.FindAllSubmatch(source, -1) {
		specs = append(specs, string(m[1]))
	}
	return specs, nil
}

// ParseImports implements modgraph.ImportParser.
func (Requires) ParseImports(_ context.Context, source []byte, _ string) ([]string, error) {
	specs := []string{}
	seen := make(map[string]bool)
	for _, m := range requireCall.FindAllSubmatch(source, -1) {
		spec := string(m[1])
		if !seen[spec] {
			seen[spec] = true
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

// CommonJSGraph resolves entry over files, which must already be CommonJS
// sources, and fails the test on error. The tree is rooted at a fresh
// temporary directory which is returned alongside the graph.
func CommonJSGraph(tb testing.TB, files map[string]string, entry string) (*modgraph.Graph, string) {
	tb.Helper()
	root := tb.TempDir()
	b := modgraph.NewBuilder(NewTree(root, files), Passthrough{}, Requires{}, modgraph.WithBaseDir(root))
	g, err := b.Resolve(context.Background(), entry)
	if err != nil {
		tb.Fatalf("resolve %s: %v", entry, err)
	}
	return g, root
}
