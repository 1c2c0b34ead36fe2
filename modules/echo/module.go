package echo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/taskgridgo/internal/capability"
	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/task"
)

// Module implements the capability.Module interface for this package.
type Module struct{}

// Input defines the fields the echo capability reads from a task's
// embedded context.
type Input struct {
	Message string `json:"message,omitempty"`
	// Artifact, when present, is returned verbatim. Dry runs use it to
	// steer the quality gates without doing real work.
	Artifact *capability.Artifact `json:"artifact,omitempty"`
}

// Echo is an inert capability: it produces whatever artifact the task
// context describes. Useful for plan dry runs and engine tests.
type Echo struct{}

func (e *Echo) Name() string { return "echo" }

func (e *Echo) Run(ctx context.Context, spec *task.Spec) (*capability.Artifact, error) {
	logger := ctxlog.FromContext(ctx)

	var input Input
	if err := json.Unmarshal(spec.Context, &input); err != nil {
		return nil, fmt.Errorf("decoding task context: %w", err)
	}
	logger.Info("Echoing task.", "task_id", spec.ID, "message", input.Message)

	if input.Artifact != nil {
		return input.Artifact, nil
	}
	return &capability.Artifact{
		Ref:   "echo://" + spec.ID,
		Tests: &capability.TestSuite{Total: 1, Passed: 1, CoveragePct: 100},
	}, nil
}

// Register registers the capability with the engine.
func (m *Module) Register(r *capability.Registry) {
	r.Register(&Echo{})
}
