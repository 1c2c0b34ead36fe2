package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/vk/taskgridgo/internal/scheduler"
)

// State is the lifecycle of a whole session.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Session owns every TaskResult for one run of a compiled plan. All
// results start Pending so skip propagation can mark tasks that are
// never dispatched.
type Session struct {
	ID        string
	Layers    []scheduler.Layer
	Results   map[string]*TaskResult
	State     State
	StartedAt time.Time
	EndedAt   time.Time
}

// New seeds a running session from a compiled plan.
func New(plan *scheduler.Plan) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Layers:    plan.Layers,
		Results:   make(map[string]*TaskResult, len(plan.Specs)),
		State:     StateRunning,
		StartedAt: time.Now(),
	}
	for i, layer := range plan.Layers {
		for _, id := range layer {
			s.Results[id] = &TaskResult{TaskID: id, Status: StatusPending, Layer: i}
		}
	}
	return s
}

// Finish stamps the session's end state once every layer has resolved
// (or the run was cancelled).
func (s *Session) Finish(state State) {
	s.State = state
	s.EndedAt = time.Now()
}

// CountByStatus tallies results per status for the final report.
func (s *Session) CountByStatus() map[Status]int {
	counts := make(map[Status]int)
	for _, r := range s.Results {
		counts[r.Status]++
	}
	return counts
}
