package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/executor"
	"github.com/vk/taskgridgo/internal/gates"
	"github.com/vk/taskgridgo/internal/retry"
	"github.com/vk/taskgridgo/internal/scheduler"
	"github.com/vk/taskgridgo/internal/session"
	"github.com/vk/taskgridgo/internal/task"
	"github.com/vk/taskgridgo/modules/script"
)

// Compile loads a task batch and compiles it into an execution plan
// without running anything.
func (a *App) Compile(ctx context.Context, taskPath string) (*scheduler.Plan, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Loading task batch.", "path", taskPath)

	specs, err := task.Load(taskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load task batch: %w", err)
	}

	plan, err := scheduler.Compile(ctx, specs, gates.KnownGates())
	if err != nil {
		return nil, fmt.Errorf("failed to compile execution plan: %w", err)
	}
	a.logger.Info("Plan compiled.", "tasks", plan.TotalTasks(), "layers", len(plan.Layers))
	return plan, nil
}

// Run compiles the task batch at taskPath and executes it to
// completion, writing the final report as JSON to the app's output.
func (a *App) Run(ctx context.Context, taskPath string) (*session.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.statusServer()
	}

	plan, err := a.Compile(ctx, taskPath)
	if err != nil {
		return nil, err
	}

	cap, err := a.registry.Lookup(a.config.Capability)
	if err != nil {
		return nil, err
	}

	var pipeline *gates.Pipeline
	if a.config.QualityGatesEnabled {
		pipeline = gates.NewPipeline()
	} else {
		a.logger.Warn("Quality gates are disabled; artifacts will not be validated.")
	}

	policy := retry.DefaultPolicy()
	policy.MaxRetries = a.config.MaxRetries
	policy.AutoRetry = a.config.AutoRetry

	engine := executor.New(executor.Params{
		Capability:  cap,
		TestRunner:  &script.Runner{},
		Pipeline:    pipeline,
		Policy:      policy,
		Parallel:    a.config.MaxParallelAgents,
		TaskTimeout: a.config.TaskTimeout,
		Sink:        a.sinks,
		Metrics:     a.metrics,
	})

	a.logger.Info("🚀 Starting execution.",
		"capability", cap.Name(),
		"parallel", a.config.MaxParallelAgents,
		"strategy", string(a.config.ExecutionStrategy))
	report := engine.Execute(ctx, plan)
	a.setReport(report)
	a.logger.Info("🏁 Execution finished.", "state", string(report.State))

	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return report, fmt.Errorf("failed to write final report: %w", err)
	}
	return report, nil
}
