package session

import (
	"context"
	"time"

	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/gates"
	"github.com/vk/taskgridgo/internal/monitor"
	"github.com/vk/taskgridgo/internal/sink"
)

// Update is a single status change reported by an executor worker.
type Update struct {
	TaskID      string
	Status      Status
	Attempt     int
	Message     string
	GateReports []gates.Report
	ArtifactRef string
	RootCause   string
}

type envelope struct {
	update   *Update
	flush    chan struct{}
	snapshot chan map[string]TaskResult
}

// Aggregator is the single writer of a session's result map. Workers
// send updates over a channel; one goroutine applies them and
// serializes every progress-sink call, so no two sink events are ever
// emitted concurrently.
type Aggregator struct {
	session *Session
	sink    sink.Sink
	metrics *monitor.Metrics
	inbox   chan envelope
	done    chan struct{}
}

// NewAggregator starts the writer goroutine. Close must be called once
// all producers have stopped.
func NewAggregator(ctx context.Context, s *Session, snk sink.Sink, metrics *monitor.Metrics) *Aggregator {
	a := &Aggregator{
		session: s,
		sink:    snk,
		metrics: metrics,
		inbox:   make(chan envelope, 64),
		done:    make(chan struct{}),
	}
	go a.run(ctx)
	return a
}

func (a *Aggregator) run(ctx context.Context) {
	defer close(a.done)
	for env := range a.inbox {
		switch {
		case env.update != nil:
			a.apply(ctx, *env.update)
		case env.flush != nil:
			close(env.flush)
		case env.snapshot != nil:
			env.snapshot <- a.copyResults()
		}
	}
}

func (a *Aggregator) apply(ctx context.Context, u Update) {
	logger := ctxlog.FromContext(ctx)
	r, ok := a.session.Results[u.TaskID]
	if !ok {
		logger.Error("Dropping update for unknown task.", "task_id", u.TaskID)
		return
	}
	if err := r.transition(u.Status); err != nil {
		logger.Error("Dropping illegal status update.", "error", err)
		return
	}

	if u.Attempt > 0 {
		r.AttemptCount = u.Attempt
	}
	if u.Message != "" {
		r.Message = u.Message
	}
	if len(u.GateReports) > 0 {
		r.GateReports = u.GateReports
	}
	if u.ArtifactRef != "" {
		r.ArtifactRef = u.ArtifactRef
	}
	if u.RootCause != "" {
		r.RootCause = u.RootCause
	}
	if u.Status == StatusDispatched && r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	if u.Status.Terminal() {
		r.FinishedAt = time.Now()
		a.metrics.TaskFinished(string(u.Status))
	}
	if u.Status == StatusFailed {
		for _, rep := range u.GateReports {
			if !rep.Passed {
				a.metrics.GateFailed(rep.Gate)
			}
		}
	}

	if err := a.sink.Publish(ctx, sink.Event{
		SessionID: a.session.ID,
		TaskID:    u.TaskID,
		Status:    string(u.Status),
		Layer:     r.Layer,
		Attempt:   r.AttemptCount,
		Message:   u.Message,
		Timestamp: time.Now(),
	}); err != nil {
		logger.Warn("Progress sink rejected event.", "task_id", u.TaskID, "error", err)
	}
}

func (a *Aggregator) copyResults() map[string]TaskResult {
	out := make(map[string]TaskResult, len(a.session.Results))
	for id, r := range a.session.Results {
		out[id] = *r
	}
	return out
}

// Record queues one status change for the writer goroutine.
func (a *Aggregator) Record(u Update) {
	a.inbox <- envelope{update: &u}
}

// Flush blocks until every update queued before it has been applied.
// The executor calls this at each layer barrier.
func (a *Aggregator) Flush() {
	ch := make(chan struct{})
	a.inbox <- envelope{flush: ch}
	<-ch
}

// Resolved returns a point-in-time copy of all results. It is ordered
// after every previously queued update.
func (a *Aggregator) Resolved() map[string]TaskResult {
	ch := make(chan map[string]TaskResult, 1)
	a.inbox <- envelope{snapshot: ch}
	return <-ch
}

// Close stops the writer goroutine. No Record, Flush or Resolved call
// may follow.
func (a *Aggregator) Close() {
	close(a.inbox)
	<-a.done
}
