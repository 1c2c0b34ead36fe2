package sink

import (
	"context"
	"time"
)

// Event is a single progress notification emitted while a session runs.
// Status carries the task's lifecycle state as a string so sinks stay
// decoupled from the session package.
type Event struct {
	SessionID string    `json:"session_id"`
	TaskID    string    `json:"task_id,omitempty"`
	Status    string    `json:"status"`
	Layer     int       `json:"layer"`
	Attempt   int       `json:"attempt,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives progress events. Implementations must tolerate being
// called from a single goroutine only; fan-in serialization is the
// caller's responsibility.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Func adapts a plain function to the Sink interface.
type Func func(ctx context.Context, ev Event) error

func (f Func) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}
