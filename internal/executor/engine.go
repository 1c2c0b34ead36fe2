package executor

import (
	"context"
	"sync"
	"time"

	"github.com/vk/taskgridgo/internal/capability"
	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/gates"
	"github.com/vk/taskgridgo/internal/monitor"
	"github.com/vk/taskgridgo/internal/retry"
	"github.com/vk/taskgridgo/internal/scheduler"
	"github.com/vk/taskgridgo/internal/session"
	"github.com/vk/taskgridgo/internal/sink"
	"github.com/vk/taskgridgo/internal/task"
)

// Params wires an Engine. Capability and Sink are required; TestRunner,
// Pipeline and Metrics are optional (a nil Pipeline disables quality
// gates).
type Params struct {
	Capability  capability.Capability
	TestRunner  capability.TestRunner
	Pipeline    *gates.Pipeline
	Policy      retry.Policy
	Parallel    int
	TaskTimeout time.Duration
	Sink        sink.Sink
	Metrics     *monitor.Metrics
}

// Engine executes a compiled plan layer by layer: a bounded pool of
// workers per layer, a barrier between layers, and all result mutation
// funneled through the session aggregator.
type Engine struct {
	capability  capability.Capability
	runner      capability.TestRunner
	pipeline    *gates.Pipeline
	policy      retry.Policy
	parallel    int
	taskTimeout time.Duration
	sink        sink.Sink
	metrics     *monitor.Metrics
}

func New(p Params) *Engine {
	if p.Parallel < 1 {
		p.Parallel = 1
	}
	snk := p.Sink
	if snk == nil {
		snk = sink.NewSlogSink()
	}
	return &Engine{
		capability:  p.Capability,
		runner:      p.TestRunner,
		pipeline:    p.Pipeline,
		policy:      p.Policy,
		parallel:    p.Parallel,
		taskTimeout: p.TaskTimeout,
		sink:        snk,
		metrics:     p.Metrics,
	}
}

// Execute runs every layer of the plan to resolution and returns the
// final report. Layers never overlap; tasks within a layer run
// concurrently up to the pool bound. On cancellation the session ends
// Cancelled with all already-terminal results preserved.
func (e *Engine) Execute(ctx context.Context, plan *scheduler.Plan) *session.Report {
	logger := ctxlog.FromContext(ctx)
	sess := session.New(plan)
	agg := session.NewAggregator(ctx, sess, e.sink, e.metrics)

	logger.Info("Session started.",
		"session_id", sess.ID,
		"tasks", plan.TotalTasks(),
		"layers", len(plan.Layers),
		"parallel", e.parallel)

	// skipCause maps a not-yet-dispatched task to the fatal task that
	// doomed it.
	skipCause := make(map[string]string)
	cancelled := false

	for i, layer := range plan.Layers {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		layerStart := time.Now()
		logger.Debug("Layer starting.", "layer", i, "tasks", len(layer))

		sem := make(chan struct{}, e.parallel)
		var wg sync.WaitGroup
		for _, id := range layer {
			if cause, ok := skipCause[id]; ok {
				agg.Record(session.Update{
					TaskID:    id,
					Status:    session.StatusSkipped,
					RootCause: cause,
					Message:   "dependency " + cause + " failed",
				})
				continue
			}
			wg.Add(1)
			go func(spec *task.Spec) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				e.runTask(ctx, spec, agg)
			}(plan.Specs[id])
		}
		wg.Wait()
		agg.Flush()
		e.metrics.LayerFinished(time.Since(layerStart))

		resolved := agg.Resolved()
		for _, id := range layer {
			if resolved[id].Status != session.StatusFatal {
				continue
			}
			dependents, err := plan.Graph.TransitiveDependents(id)
			if err != nil {
				logger.Error("Skip propagation failed.", "task_id", id, "error", err)
				continue
			}
			for _, dep := range dependents {
				if _, already := skipCause[dep]; !already {
					skipCause[dep] = id
				}
			}
		}

		if ctx.Err() != nil {
			cancelled = true
			break
		}
	}

	switch {
	case cancelled:
		sess.Finish(session.StateCancelled)
	case anyNotSucceeded(agg.Resolved()):
		sess.Finish(session.StateFailed)
	default:
		sess.Finish(session.StateCompleted)
	}
	agg.Close()

	report := session.BuildReport(sess)
	logger.Info("Session finished.",
		"session_id", sess.ID,
		"state", string(sess.State),
		"duration", report.Duration)
	return report
}

func anyNotSucceeded(results map[string]session.TaskResult) bool {
	for _, r := range results {
		if r.Status != session.StatusSucceeded {
			return true
		}
	}
	return false
}

// runTask drives one task through its attempt loop until it reaches a
// terminal state or the run is cancelled.
func (e *Engine) runTask(ctx context.Context, spec *task.Spec, agg *session.Aggregator) {
	logger := ctxlog.FromContext(ctx)
	bo := e.policy.NewBackOff()
	attempt := 0
	retriesUsed := 0

	for {
		// Task-start cancellation boundary.
		if ctx.Err() != nil {
			return
		}
		attempt++
		agg.Record(session.Update{TaskID: spec.ID, Status: session.StatusDispatched, Attempt: attempt})
		e.metrics.AttemptStarted()
		start := time.Now()
		artifact, reports, err := e.attempt(ctx, spec, agg)
		e.metrics.AttemptFinished(time.Since(start))

		if err == nil {
			update := session.Update{
				TaskID:      spec.ID,
				Status:      session.StatusSucceeded,
				GateReports: reports,
			}
			if artifact != nil {
				update.ArtifactRef = artifact.Ref
			}
			agg.Record(update)
			return
		}

		// Cancellation mid-attempt: leave the result at its last
		// non-terminal status.
		if ctx.Err() != nil {
			return
		}

		class := retry.Classify(err)
		agg.Record(session.Update{
			TaskID:      spec.ID,
			Status:      session.StatusFailed,
			Message:     err.Error(),
			GateReports: reports,
		})

		if !e.policy.ShouldRetry(class, retriesUsed) {
			logger.Warn("Task failed permanently.",
				"task_id", spec.ID,
				"class", class.String(),
				"attempts", attempt,
				"error", err)
			agg.Record(session.Update{
				TaskID:  spec.ID,
				Status:  session.StatusFatal,
				Message: err.Error(),
			})
			return
		}
		if class != retry.ClassResourceExhausted {
			retriesUsed++
		}

		wait := bo.NextBackOff()
		logger.Debug("Task retrying.",
			"task_id", spec.ID,
			"class", class.String(),
			"attempt", attempt,
			"backoff", wait)
		agg.Record(session.Update{TaskID: spec.ID, Status: session.StatusRetried, Message: err.Error()})

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// attempt performs one execute-then-validate pass. The capability runs
// under the task's own timeout; validation reuses the remaining budget.
func (e *Engine) attempt(ctx context.Context, spec *task.Spec, agg *session.Aggregator) (*capability.Artifact, []gates.Report, error) {
	agg.Record(session.Update{TaskID: spec.ID, Status: session.StatusExecuting})

	tctx, cancel := context.WithTimeout(ctx, spec.EffectiveTimeout(e.taskTimeout))
	defer cancel()

	artifact, err := e.capability.Run(tctx, spec)
	if err != nil {
		return nil, nil, err
	}

	if artifact.Tests == nil && len(artifact.TestCommand) > 0 && e.runner != nil {
		suite, err := e.runner.RunTests(tctx, artifact)
		if err != nil {
			return artifact, nil, &retry.TransientError{Err: err}
		}
		artifact.Tests = suite
	}

	// Gate-start cancellation boundary.
	if ctx.Err() != nil {
		return artifact, nil, ctx.Err()
	}
	agg.Record(session.Update{TaskID: spec.ID, Status: session.StatusValidating})
	if e.pipeline == nil {
		return artifact, nil, nil
	}
	reports, err := e.pipeline.Validate(tctx, spec, artifact)
	return artifact, reports, err
}
