// SPDX-License-Identifier: MPL-2.0

// Package dag orders module dependency graphs and reports import cycles.
// Nodes are module IDs; an edge from A to B means A must be evaluated before
// B, so a dependency points at the modules that import it.
package dag

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle lists every node left unordered: the members of all cycles plus
		// the nodes that can only be reached through one.
		Cycle []int
	}

	// Graph is a directed graph over integer node IDs.
	Graph struct {
		// adjacency maps each node to its outgoing neighbors.
		adjacency map[int][]int
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []int
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[int]bool
	}
)

func (e *CycleError) Error() string {
	ids := make([]string, len(e.Cycle))
	for i, id := range e.Cycle {
		ids[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("dependency cycle detected among modules %s", strings.Join(ids, ", "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[int][]int),
		nodeSet:   make(map[int]bool),
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(id int) {
	if g.nodeSet[id] {
		return
	}
	g.nodeSet[id] = true
	g.nodes = append(g.nodes, id)
}

// AddEdge adds a directed edge from -> to, meaning "from" is evaluated before "to".
// Both nodes are implicitly added if they don't exist.
func (g *Graph) AddEdge(from, to int) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// TopologicalSort returns a valid evaluation order using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle.
// The returned order is deterministic: nodes at the same topological level
// appear in the order they were first added to the graph.
func (g *Graph) TopologicalSort() ([]int, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[int]int, len(g.nodes))
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	queue := make([]int, 0, len(g.nodes))
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]int, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var stuck []int
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				stuck = append(stuck, node)
			}
		}
		return nil, &CycleError{Cycle: stuck}
	}

	return result, nil
}

// Cycles returns the strongly connected components that contain a cycle: every
// component of two or more nodes, and single nodes with an edge to
// themselves. Each component is sorted ascending and components are ordered
// by their smallest node. An acyclic graph yields nil.
func (g *Graph) Cycles() [][]int {
	t := &tarjan{
		g:       g,
		index:   make(map[int]int, len(g.nodes)),
		lowlink: make(map[int]int, len(g.nodes)),
		onStack: make(map[int]bool, len(g.nodes)),
	}
	for _, node := range g.nodes {
		if _, seen := t.index[node]; !seen {
			t.connect(node)
		}
	}

	var cycles [][]int
	for _, scc := range t.components {
		if len(scc) == 1 && !slices.Contains(g.adjacency[scc[0]], scc[0]) {
			continue
		}
		slices.Sort(scc)
		cycles = append(cycles, scc)
	}
	slices.SortFunc(cycles, func(a, b []int) int { return a[0] - b[0] })
	return cycles
}

type tarjan struct {
	g          *Graph
	next       int
	index      map[int]int
	lowlink    map[int]int
	onStack    map[int]bool
	stack      []int
	components [][]int
}

func (t *tarjan) connect(v int) {
	t.index[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.adjacency[v] {
		if _, seen := t.index[w]; !seen {
			t.connect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}
	var scc []int
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == v {
			break
		}
	}
	t.components = append(t.components, scc)
}
