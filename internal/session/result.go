package session

import (
	"fmt"
	"time"

	"github.com/vk/taskgridgo/internal/gates"
)

// Status is a task's position in its execution lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusDispatched Status = "dispatched"
	StatusExecuting  Status = "executing"
	StatusValidating Status = "validating"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusRetried    Status = "retried"
	StatusFatal      Status = "fatal"
	StatusSkipped    Status = "skipped"
)

// Terminal reports whether a result in this status may never change
// again.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFatal, StatusSkipped:
		return true
	}
	return false
}

// validNext encodes the per-task state machine. Failed loops back
// through Retried while retry budget remains, otherwise hardens to
// Fatal. Skipped is reachable only from Pending: a task whose
// dependency went Fatal is never dispatched.
var validNext = map[Status][]Status{
	StatusPending:    {StatusDispatched, StatusSkipped},
	StatusDispatched: {StatusExecuting, StatusFailed},
	StatusExecuting:  {StatusValidating, StatusFailed},
	StatusValidating: {StatusSucceeded, StatusFailed},
	StatusFailed:     {StatusRetried, StatusFatal},
	StatusRetried:    {StatusDispatched},
}

// TaskResult is the mutable record for one task within a session. It
// is owned by the aggregator goroutine; no other code writes it.
type TaskResult struct {
	TaskID       string         `json:"task_id"`
	Status       Status         `json:"status"`
	Layer        int            `json:"layer"`
	AttemptCount int            `json:"attempt_count"`
	GateReports  []gates.Report `json:"gate_reports,omitempty"`
	ArtifactRef  string         `json:"artifact_ref,omitempty"`
	Message      string         `json:"message,omitempty"`

	// RootCause names the Fatal task whose failure skipped this one.
	// Set only when Status is Skipped.
	RootCause string `json:"root_cause,omitempty"`

	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// transition moves the result to the next status, enforcing terminal
// immutability and the legal edges of the state machine.
func (r *TaskResult) transition(to Status) error {
	if r.Status.Terminal() {
		return fmt.Errorf("task %s: result is terminal (%s), cannot move to %s", r.TaskID, r.Status, to)
	}
	for _, next := range validNext[r.Status] {
		if next == to {
			r.Status = to
			return nil
		}
	}
	return fmt.Errorf("task %s: illegal transition %s -> %s", r.TaskID, r.Status, to)
}
