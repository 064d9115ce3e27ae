package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the immutable dependency graph of targets and imports.
// Edges run from dependency to dependent.
type Graph struct {
	nodes          map[InternedString]Node
	dependents     map[InternedString][]InternedString
	executionOrder []InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[InternedString]Node),
		dependents: make(map[InternedString][]InternedString),
	}
}

// AddNode adds a node to the graph.
// Targets and imports share one namespace; a duplicate name is an error.
func (g *Graph) AddNode(n *Node) error {
	if _, exists := g.nodes[n.Name]; exists {
		return zerr.With(ErrNodeAlreadyExists, "node", n.Name.String())
	}
	g.nodes[n.Name] = *n
	return nil
}

// Get returns the node with the given name.
func (g *Graph) Get(name InternedString) (Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Dependents returns the names of nodes that depend on the given node.
// Populated by Validate.
func (g *Graph) Dependents(name InternedString) []InternedString {
	return g.dependents[name]
}

// Validate checks for cycles and unresolved references using a depth-first
// topological sort. On success it populates the execution order (dependencies
// before dependents) and the reverse adjacency used by the scheduler.
//
// Roots are visited in sorted name order so that the computed order depends
// only on the graph shape, not on declaration or map iteration order.
func (g *Graph) Validate() error {
	g.executionOrder = make([]InternedString, 0, len(g.nodes))
	g.dependents = make(map[InternedString][]InternedString, len(g.nodes))

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	visited := make(map[InternedString]int, len(g.nodes))
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = visiting
		path = append(path, u)

		node, exists := g.nodes[u]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", u.String())
		}

		for _, dep := range node.Dependencies {
			g.dependents[dep] = append(g.dependents[dep], u)
			switch visited[dep] {
			case visiting:
				return g.cycleError(path, dep)
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = done
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	for _, name := range g.sortedNames() {
		if visited[name] == unvisited {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	for dep := range g.dependents {
		slices.SortFunc(g.dependents[dep], compareNames)
		g.dependents[dep] = slices.Compact(g.dependents[dep])
	}

	return nil
}

// Walk returns an iterator yielding nodes in execution order, dependencies
// before dependents. Validate must have succeeded first.
func (g *Graph) Walk() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.nodes[name]) {
				return
			}
		}
	}
}

func (g *Graph) sortedNames() []InternedString {
	names := make([]InternedString, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	slices.SortFunc(names, compareNames)
	return names
}

func compareNames(a, b InternedString) int {
	return strings.Compare(a.String(), b.String())
}

// cycleError reports the cycle path from the first occurrence of dep.
func (g *Graph) cycleError(path []InternedString, dep InternedString) error {
	start := slices.Index(path, dep)
	var b strings.Builder
	for i := start; i >= 0 && i < len(path); i++ {
		b.WriteString(path[i].String())
		b.WriteString(" -> ")
	}
	b.WriteString(dep.String())
	return zerr.With(ErrCycleDetected, "cycle", b.String())
}
