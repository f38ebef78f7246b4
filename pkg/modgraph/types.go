// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"encoding/json"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/invowk/minipack/pkg/types"
)

type (
	// Module is one uniquely resolved source file.
	Module struct {
		// ID is issued at first discovery; the entry module is always 0.
		ID int
		// Path is the canonical absolute path used as the memo key.
		Path types.FilesystemPath
		// Code is the Transformer output, embedded verbatim into the bundle.
		Code string
		// Dependencies maps each import specifier, as written, to a module ID.
		Dependencies *DependencyMap
		// Extension is the extension of Path. Informational only.
		Extension string
	}

	// DependencyMap is an insertion-ordered specifier -> module ID mapping.
	// The zero value is ready to use.
	DependencyMap struct {
		order []string
		ids   map[string]int
	}

	// Graph is the result of one Resolve call: an arena of modules indexed by
	// ID plus a canonical path -> ID lookup.
	Graph struct {
		modules []*Module
		index   map[types.FilesystemPath]int
	}
)

// NewDependencyMap returns an empty DependencyMap.
func NewDependencyMap() *DependencyMap {
	return &DependencyMap{}
}

// Set records spec -> id. A specifier that is already present keeps its
// original position and has its ID replaced.
func (d *DependencyMap) Set(spec string, id int) {
	if d.ids == nil {
		d.ids = make(map[string]int)
	}
	if _, ok := d.ids[spec]; !ok {
		d.order = append(d.order, spec)
	}
	d.ids[spec] = id
}

// Get returns the module ID recorded for spec.
func (d *DependencyMap) Get(spec string) (int, bool) {
	if d == nil {
		return 0, false
	}
	id, ok := d.ids[spec]
	return id, ok
}

// Len returns the number of distinct specifiers.
func (d *DependencyMap) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// Specifiers returns the specifiers in declaration order.
func (d *DependencyMap) Specifiers() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.order)
}

// All iterates specifier/ID pairs in declaration order.
func (d *DependencyMap) All() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		if d == nil {
			return
		}
		for _, spec := range d.order {
			if !yield(spec, d.ids[spec]) {
				return
			}
		}
	}
}

// MarshalJSON renders the mapping as a JSON object whose keys appear in
// declaration order. The output is also a valid JavaScript object literal.
func (d *DependencyMap) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for spec, id := range d.All() {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(spec)
		if err != nil {
			return nil, err
		}
		sb.Write(key)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(id))
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}

// Map returns an unordered copy of the mapping.
func (d *DependencyMap) Map() map[string]int {
	out := make(map[string]int, d.Len())
	for spec, id := range d.All() {
		out[spec] = id
	}
	return out
}

func newGraph() *Graph {
	return &Graph{index: make(map[types.FilesystemPath]int)}
}

// reserve returns the ID for path, inserting a placeholder module when the
// path has not been seen. fresh reports whether a new slot was created.
func (g *Graph) reserve(path types.FilesystemPath) (id int, fresh bool) {
	if id, ok := g.index[path]; ok {
		return id, false
	}
	id = len(g.modules)
	g.modules = append(g.modules, &Module{
		ID:           id,
		Path:         path,
		Dependencies: NewDependencyMap(),
		Extension:    path.Ext(),
	})
	g.index[path] = id
	return id, true
}

// Len returns the number of modules.
func (g *Graph) Len() int { return len(g.modules) }

// Entry returns the entry module (ID 0), or nil for an empty graph.
func (g *Graph) Entry() *Module {
	if len(g.modules) == 0 {
		return nil
	}
	return g.modules[0]
}

// Module returns the module with the given ID.
func (g *Graph) Module(id int) (*Module, bool) {
	if id < 0 || id >= len(g.modules) {
		return nil, false
	}
	return g.modules[id], true
}

// Lookup returns the module stored under a canonical path.
func (g *Graph) Lookup(path types.FilesystemPath) (*Module, bool) {
	id, ok := g.index[path]
	if !ok {
		return nil, false
	}
	return g.modules[id], true
}

// Modules returns all modules in ID order.
func (g *Graph) Modules() []*Module {
	return slices.Clone(g.modules)
}

// Paths returns a copy of the canonical path -> ID index.
func (g *Graph) Paths() map[types.FilesystemPath]int {
	out := make(map[types.FilesystemPath]int, len(g.index))
	for p, id := range g.index {
		out[p] = id
	}
	return out
}
