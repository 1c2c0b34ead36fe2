package sink

import (
	"context"

	"github.com/vk/taskgridgo/internal/ctxlog"
)

// SlogSink writes each event as a structured log line on the
// context-scoped logger.
type SlogSink struct{}

func NewSlogSink() *SlogSink {
	return &SlogSink{}
}

func (s *SlogSink) Publish(ctx context.Context, ev Event) error {
	logger := ctxlog.FromContext(ctx)
	attrs := []any{
		"session_id", ev.SessionID,
		"status", ev.Status,
		"layer", ev.Layer,
	}
	if ev.TaskID != "" {
		attrs = append(attrs, "task_id", ev.TaskID)
	}
	if ev.Attempt > 0 {
		attrs = append(attrs, "attempt", ev.Attempt)
	}
	if ev.Message != "" {
		attrs = append(attrs, "message", ev.Message)
	}
	logger.Info("Progress.", attrs...)
	return nil
}
