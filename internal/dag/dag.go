package dag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/task"
)

// Graph is the dependency DAG over a task batch. Edges point from a
// dependency to its dependents. The graph is not mutated after Build.
type Graph struct {
	nodes map[string]*node
}

// node is a single vertex. It is un-exported to enforce interaction with the
// graph via the public API (string IDs), not by direct struct manipulation.
type node struct {
	id string
	// deps holds the set of nodes this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of nodes that depend on this node (successors).
	dependents map[string]*node
}

// CycleError reports a circular dependency. Path names the full cycle, with
// the first node repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}

// Build constructs the dependency graph from a validated batch. On a cycle
// it returns a *CycleError and no partial graph.
func Build(ctx context.Context, batch map[string]*task.Spec) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "node_count", len(batch))

	g := &Graph{nodes: make(map[string]*node, len(batch))}
	for id := range batch {
		g.nodes[id] = &node{
			id:         id,
			deps:       make(map[string]*node),
			dependents: make(map[string]*node),
		}
	}

	for id, spec := range batch {
		for _, dep := range spec.Dependencies {
			if err := g.addEdge(dep, id); err != nil {
				return nil, err
			}
		}
	}
	logger.Debug("Build: Edge linking complete.")

	if err := g.detectCycles(); err != nil {
		return nil, err
	}
	logger.Debug("Build: Cycle detection passed.")

	return g, nil
}

// addEdge creates a directed edge from the dependency to its dependent.
func (g *Graph) addEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}
	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("dependency not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("dependent not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// IDs returns all node IDs in sorted order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dependencies returns the sorted IDs the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	deps := make([]string, 0, len(n.deps))
	for depID := range n.deps {
		deps = append(deps, depID)
	}
	sort.Strings(deps)
	return deps, nil
}

// Dependents returns the sorted IDs that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	dependents := make([]string, 0, len(n.dependents))
	for depID := range n.dependents {
		dependents = append(dependents, depID)
	}
	sort.Strings(dependents)
	return dependents, nil
}

// TransitiveDependents returns every node reachable downstream of id,
// sorted. Used for fault propagation: these are the tasks that can never run
// once id fails fatally.
func (g *Graph) TransitiveDependents(id string) ([]string, error) {
	start, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	seen := make(map[string]bool)
	var walk func(n *node)
	walk = func(n *node) {
		for _, dependent := range n.dependents {
			if !seen[dependent.id] {
				seen[dependent.id] = true
				walk(dependent)
			}
		}
	}
	walk(start)

	out := make([]string, 0, len(seen))
	for did := range seen {
		out = append(out, did)
	}
	sort.Strings(out)
	return out, nil
}

// InDegrees returns a fresh map of node ID to unresolved dependency count.
func (g *Graph) InDegrees() map[string]int {
	degrees := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		degrees[id] = len(n.deps)
	}
	return degrees
}

// detectCycles runs a three-color DFS over the graph. White nodes are
// unvisited, grey nodes are on the current recursion stack, black nodes are
// fully explored. Hitting a grey node means a cycle; the recorded stack
// yields the full cycle path.
func (g *Graph) detectCycles() error {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(n *node) error
	visit = func(n *node) error {
		color[n.id] = grey
		stack = append(stack, n.id)

		// Iterate deterministically so the reported cycle is stable.
		depIDs := make([]string, 0, len(n.deps))
		for depID := range n.deps {
			depIDs = append(depIDs, depID)
		}
		sort.Strings(depIDs)

		for _, depID := range depIDs {
			dep := n.deps[depID]
			switch color[dep.id] {
			case grey:
				return &CycleError{Path: cyclePath(stack, dep.id)}
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[n.id] = black
		return nil
	}

	for _, id := range g.IDs() {
		if color[id] == white {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// cyclePath trims the DFS stack down to the cycle starting at firstID and
// closes the loop by repeating the entry node.
func cyclePath(stack []string, firstID string) []string {
	for i, id := range stack {
		if id == firstID {
			path := append([]string{}, stack[i:]...)
			return append(path, firstID)
		}
	}
	// Unreachable if the stack discipline holds.
	return append([]string{firstID}, firstID)
}
