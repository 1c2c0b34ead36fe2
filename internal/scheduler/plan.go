package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/dag"
	"github.com/vk/taskgridgo/internal/task"
)

// Layer is an ordered list of task IDs eligible to run concurrently.
type Layer []string

// Plan is a compiled, immutable execution plan: the validated batch plus its
// layer assignment.
type Plan struct {
	// Layers in strict topological order.
	Layers []Layer
	// Specs holds every task spec keyed by ID.
	Specs map[string]*task.Spec
	// Graph is the dependency DAG the layers were derived from.
	Graph *dag.Graph
}

// TotalTasks returns the number of tasks across all layers.
func (p *Plan) TotalTasks() int {
	return len(p.Specs)
}

// Compile validates a task batch, builds its dependency graph, and assigns
// execution layers. Validation failures are collected per spec and joined;
// a dependency cycle aborts compilation with no partial plan.
func Compile(ctx context.Context, specs []*task.Spec, knownGates map[string]bool) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	batch, errs := task.ValidateBatch(specs, knownGates)
	if len(errs) > 0 {
		return nil, fmt.Errorf("task validation failed: %w", errors.Join(errs...))
	}
	logger.Debug("Compile: Batch validation passed.", "task_count", len(batch))

	graph, err := dag.Build(ctx, batch)
	if err != nil {
		return nil, err
	}

	layers := assignLayers(graph, batch)
	logger.Debug("Compile: Layer assignment complete.", "layer_count", len(layers))

	return &Plan{Layers: layers, Specs: batch, Graph: graph}, nil
}

// assignLayers peels zero-in-degree nodes off the graph until it is empty.
// The graph is already known to be acyclic, so the peeling always terminates.
func assignLayers(graph *dag.Graph, batch map[string]*task.Spec) []Layer {
	degrees := graph.InDegrees()
	var layers []Layer

	for len(degrees) > 0 {
		var ready Layer
		for id, deg := range degrees {
			if deg == 0 {
				ready = append(ready, id)
			}
		}

		sortLayer(ready, batch)
		layers = append(layers, ready)

		for _, id := range ready {
			delete(degrees, id)
			dependents, _ := graph.Dependents(id)
			for _, dep := range dependents {
				degrees[dep]--
			}
		}
	}
	return layers
}

// sortLayer orders a layer by priority descending, then ID ascending, so
// that compiling the same batch twice yields identical plans.
func sortLayer(layer Layer, batch map[string]*task.Spec) {
	sort.Slice(layer, func(i, j int) bool {
		a, b := batch[layer[i]], batch[layer[j]]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.ID < b.ID
	})
}
