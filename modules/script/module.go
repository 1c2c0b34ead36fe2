package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/vk/taskgridgo/internal/capability"
	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/retry"
	"github.com/vk/taskgridgo/internal/task"
)

// Module implements the capability.Module interface for this package.
type Module struct{}

// Input defines the fields the script capability reads from a task's
// embedded context.
type Input struct {
	// Command is the producer process. It must print a JSON-encoded
	// artifact on stdout.
	Command []string `json:"command"`
	Workdir string   `json:"workdir,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Script runs an external producer command per task. The command's
// stdout carries the artifact; its test_command field, if present, is
// later executed by the Runner.
type Script struct{}

func (s *Script) Name() string { return "script" }

func (s *Script) Run(ctx context.Context, spec *task.Spec) (*capability.Artifact, error) {
	logger := ctxlog.FromContext(ctx)

	var input Input
	if err := json.Unmarshal(spec.Context, &input); err != nil {
		return nil, fmt.Errorf("decoding task context: %w", err)
	}
	if len(input.Command) == 0 {
		return nil, &retry.FatalError{Err: fmt.Errorf("task %s: context has no command", spec.ID)}
	}

	logger.Info("Running producer command.", "task_id", spec.ID, "command", input.Command[0])

	cmd := exec.CommandContext(ctx, input.Command[0], input.Command[1:]...)
	cmd.Dir = input.Workdir
	cmd.Env = os.Environ()
	for k, v := range input.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &retry.TransientError{
			Err: fmt.Errorf("producer command failed: %w: %s", err, stderr.String()),
		}
	}

	var artifact capability.Artifact
	if err := json.Unmarshal(stdout.Bytes(), &artifact); err != nil {
		return nil, &retry.TransientError{
			Err: fmt.Errorf("producer output is not a valid artifact: %w", err),
		}
	}
	return &artifact, nil
}

// Runner executes an artifact's test command and decodes the suite
// summary the command prints on stdout.
type Runner struct{}

func (r *Runner) RunTests(ctx context.Context, artifact *capability.Artifact) (*capability.TestSuite, error) {
	if len(artifact.TestCommand) == 0 {
		return nil, fmt.Errorf("artifact has no test command")
	}

	cmd := exec.CommandContext(ctx, artifact.TestCommand[0], artifact.TestCommand[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// A failing suite is a result, not a runner error; the command is
	// expected to report failures in its JSON summary and exit zero.
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("test command failed: %w: %s", err, stderr.String())
	}

	var suite capability.TestSuite
	if err := json.Unmarshal(stdout.Bytes(), &suite); err != nil {
		return nil, fmt.Errorf("test command output is not a valid suite summary: %w", err)
	}
	return &suite, nil
}

// Register registers the capability with the engine.
func (m *Module) Register(r *capability.Registry) {
	r.Register(&Script{})
}
