package scheduler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskgridgo/internal/dag"
	"github.com/vk/taskgridgo/internal/task"
)

var noGates = map[string]bool{}

func spec(id string, priority int, deps ...string) *task.Spec {
	return &task.Spec{
		ID:                 id,
		Title:              id,
		Context:            json.RawMessage(`{"work":"` + id + `"}`),
		Dependencies:       deps,
		AcceptanceCriteria: []string{"done"},
		Priority:           priority,
	}
}

func TestCompileDiamond(t *testing.T) {
	specs := []*task.Spec{
		spec("a", 0),
		spec("b", 0),
		spec("c", 0, "a", "b"),
	}

	plan, err := Compile(context.Background(), specs, noGates)
	require.NoError(t, err)
	require.Len(t, plan.Layers, 2)
	assert.Equal(t, Layer{"a", "b"}, plan.Layers[0])
	assert.Equal(t, Layer{"c"}, plan.Layers[1])
	assert.Equal(t, 3, plan.TotalTasks())
}

func TestCompileDependenciesAlwaysInEarlierLayers(t *testing.T) {
	specs := []*task.Spec{
		spec("a", 0),
		spec("b", 0, "a"),
		spec("c", 0, "a"),
		spec("d", 0, "b", "c"),
		spec("e", 0),
		spec("f", 0, "d", "e"),
	}

	plan, err := Compile(context.Background(), specs, noGates)
	require.NoError(t, err)

	layerOf := make(map[string]int)
	for i, layer := range plan.Layers {
		for _, id := range layer {
			layerOf[id] = i
		}
	}
	for _, s := range specs {
		for _, dep := range s.Dependencies {
			assert.Less(t, layerOf[dep], layerOf[s.ID],
				"dependency %s of %s must be in an earlier layer", dep, s.ID)
		}
	}
}

func TestCompileCycleProducesNoPlan(t *testing.T) {
	specs := []*task.Spec{
		spec("a", 0, "b"),
		spec("b", 0, "a"),
	}

	plan, err := Compile(context.Background(), specs, noGates)
	assert.Nil(t, plan)

	var cycle *dag.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Contains(t, cycle.Path, "a")
	assert.Contains(t, cycle.Path, "b")
}

func TestCompileCollectsValidationErrors(t *testing.T) {
	specs := []*task.Spec{
		{ID: "broken1"},
		{ID: "broken2"},
		spec("ok", 0),
	}

	_, err := Compile(context.Background(), specs, noGates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken1")
	assert.Contains(t, err.Error(), "broken2")
}

func TestCompileLayerOrderingDeterministic(t *testing.T) {
	specs := []*task.Spec{
		spec("zeta", 5),
		spec("alpha", 5),
		spec("mid", 9),
		spec("last", 1),
	}

	first, err := Compile(context.Background(), specs, noGates)
	require.NoError(t, err)
	require.Len(t, first.Layers, 1)
	// Priority descending, then ID ascending.
	assert.Equal(t, Layer{"mid", "alpha", "zeta", "last"}, first.Layers[0])

	for i := 0; i < 10; i++ {
		again, err := Compile(context.Background(), specs, noGates)
		require.NoError(t, err)
		assert.Equal(t, first.Layers, again.Layers)
	}
}
