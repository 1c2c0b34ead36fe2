package app

import (
	"context"
	"sync"
	"time"

	"github.com/vk/taskgridgo/internal/sink"
)

// statusTracker is a sink that maintains a live view of the running
// session for the /status endpoint. Feeding it from the aggregator's
// event stream keeps the result map itself single-writer.
type statusTracker struct {
	mu         sync.Mutex
	sessionID  string
	startedAt  time.Time
	layer      int
	taskStatus map[string]string
}

func newStatusTracker() *statusTracker {
	return &statusTracker{taskStatus: make(map[string]string)}
}

func (t *statusTracker) Publish(_ context.Context, ev sink.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ev.SessionID != t.sessionID {
		t.sessionID = ev.SessionID
		t.startedAt = ev.Timestamp
		t.layer = 0
		t.taskStatus = make(map[string]string)
	}
	if ev.TaskID != "" {
		t.taskStatus[ev.TaskID] = ev.Status
	}
	if ev.Layer > t.layer {
		t.layer = ev.Layer
	}
	return nil
}

// SessionStatus is the live progress snapshot served at /status while a
// session runs.
type SessionStatus struct {
	SessionID    string         `json:"session_id"`
	CurrentLayer int            `json:"current_layer"`
	Counts       map[string]int `json:"counts"`
	Elapsed      time.Duration  `json:"elapsed"`
}

func (t *statusTracker) snapshot() (SessionStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessionID == "" {
		return SessionStatus{}, false
	}
	counts := make(map[string]int, len(t.taskStatus))
	for _, status := range t.taskStatus {
		counts[status]++
	}
	return SessionStatus{
		SessionID:    t.sessionID,
		CurrentLayer: t.layer,
		Counts:       counts,
		Elapsed:      time.Since(t.startedAt),
	}, true
}
