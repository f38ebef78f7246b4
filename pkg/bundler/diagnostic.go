// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"fmt"
	"strings"

	"github.com/invowk/minipack/internal/dag"
	"github.com/invowk/minipack/pkg/emit"
	"github.com/invowk/minipack/pkg/fspath"
	"github.com/invowk/minipack/pkg/modgraph"
	"github.com/invowk/minipack/pkg/types"
)

const (
	// SeverityWarning indicates a bundle that works but deserves attention.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a bundle that is expected to fail at runtime.
	SeverityError Severity = "error"

	// CodeImportCycle is reported once per group of mutually importing modules.
	CodeImportCycle = "import_cycle"
)

type (
	// Severity represents bundle diagnostic severity.
	Severity string

	// Diagnostic is a non-fatal finding about a produced bundle. Diagnostics
	// are returned to callers rather than written out, so the CLI decides how
	// to render them.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "import_cycle").
		Code string
		// Message is the human-readable description.
		Message string
		// Paths lists the modules involved, in ID order.
		Paths []types.FilesystemPath
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// Cycles returns the groups of modules that import each other, directly or
// transitively, including modules that import themselves. Each group is in ID
// order and groups are ordered by their first module. An acyclic graph yields
// nil.
func Cycles(g *modgraph.Graph) [][]*modgraph.Module {
	ids := dependencyGraph(g).Cycles()
	if len(ids) == 0 {
		return nil
	}
	cycles := make([][]*modgraph.Module, len(ids))
	for i, group := range ids {
		cycles[i] = make([]*modgraph.Module, len(group))
		for j, id := range group {
			cycles[i][j], _ = g.Module(id)
		}
	}
	return cycles
}

// EvaluationOrder returns module IDs ordered so every module follows the
// modules it imports. It fails with *dag.CycleError when imports are circular.
func EvaluationOrder(g *modgraph.Graph) ([]int, error) {
	return dependencyGraph(g).TopologicalSort()
}

// dependencyGraph links each dependency to the modules importing it.
func dependencyGraph(g *modgraph.Graph) *dag.Graph {
	d := dag.New()
	for _, mod := range g.Modules() {
		d.AddNode(mod.ID)
	}
	for _, mod := range g.Modules() {
		for _, depID := range mod.Dependencies.All() {
			d.AddEdge(depID, mod.ID)
		}
	}
	return d
}

// CycleDiagnostics reports one import_cycle diagnostic per group returned by
// Cycles. Under ReexecuteOnRequire they have error severity.
func CycleDiagnostics(g *modgraph.Graph, policy emit.CachePolicy) []Diagnostic {
	_, err := EvaluationOrder(g)
	if err == nil {
		return nil
	}
	var diags []Diagnostic
	for _, group := range Cycles(g) {
		diags = append(diags, cycleDiagnostic(g, group, policy, err))
	}
	return diags
}

func cycleDiagnostic(g *modgraph.Graph, group []*modgraph.Module, policy emit.CachePolicy, cause error) Diagnostic {
	paths := make([]types.FilesystemPath, len(group))
	names := make([]string, len(group))
	dir := fspath.Dir(g.Entry().Path)
	for i, mod := range group {
		paths[i] = mod.Path
		names[i] = displayPath(dir, mod.Path)
	}

	d := Diagnostic{
		Severity: SeverityWarning,
		Code:     CodeImportCycle,
		Paths:    paths,
		Cause:    cause,
	}
	if len(group) == 1 {
		d.Message = fmt.Sprintf("%s imports itself", names[0])
	} else {
		d.Message = fmt.Sprintf("circular imports between %s", strings.Join(names, ", "))
	}
	if policy == emit.ReexecuteOnRequire {
		d.Severity = SeverityError
		d.Message += "; the bundle will recurse forever with loader cache " + string(policy)
	}
	return d
}
