package httpagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vk/taskgridgo/internal/capability"
	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/retry"
	"github.com/vk/taskgridgo/internal/task"
)

// Module implements the capability.Module interface for this package.
type Module struct {
	// Endpoint is the default agent URL, used when a task's context
	// does not name one.
	Endpoint string
	// Client defaults to a plain http.Client with a generous timeout;
	// the per-task deadline still applies through the request context.
	Client *http.Client
}

// Input defines the fields the httpagent capability reads from a
// task's embedded context.
type Input struct {
	Endpoint string `json:"endpoint,omitempty"`
}

// Agent delegates task execution to a remote worker over HTTP: it POSTs
// the task spec as JSON and decodes the returned artifact.
type Agent struct {
	endpoint string
	client   *http.Client
}

func (a *Agent) Name() string { return "httpagent" }

func (a *Agent) Run(ctx context.Context, spec *task.Spec) (*capability.Artifact, error) {
	logger := ctxlog.FromContext(ctx)

	var input Input
	if err := json.Unmarshal(spec.Context, &input); err != nil {
		return nil, fmt.Errorf("decoding task context: %w", err)
	}
	endpoint := input.Endpoint
	if endpoint == "" {
		endpoint = a.endpoint
	}
	if endpoint == "" {
		return nil, &retry.FatalError{Err: fmt.Errorf("task %s: no agent endpoint configured", spec.ID)}
	}

	body, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encoding task spec: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Info("Delegating task to agent.", "task_id", spec.ID, "endpoint", endpoint)

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &retry.TransientError{Err: fmt.Errorf("agent request failed: %w", err)}
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return nil, err
	}

	var artifact capability.Artifact
	if err := json.NewDecoder(resp.Body).Decode(&artifact); err != nil {
		return nil, &retry.TransientError{Err: fmt.Errorf("decoding agent response: %w", err)}
	}
	return &artifact, nil
}

// classifyStatus maps agent HTTP errors onto the engine's failure
// classes: backpressure statuses requeue without burning retry budget,
// other server errors are transient, client errors are fatal.
func classifyStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("agent returned %s: %s", resp.Status, string(detail))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return &retry.ResourceExhaustedError{Err: err}
	case resp.StatusCode >= 500:
		return &retry.TransientError{Err: err}
	default:
		return &retry.FatalError{Err: err}
	}
}

// Register registers the capability with the engine.
func (m *Module) Register(r *capability.Registry) {
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	r.Register(&Agent{endpoint: m.Endpoint, client: client})
}
