package gates

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/taskgridgo/internal/capability"
	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/retry"
	"github.com/vk/taskgridgo/internal/task"
)

// Pipeline runs a gate set against artifacts. One pipeline is shared by all
// workers of a session; gates must be stateless.
type Pipeline struct {
	gates map[string]Gate
}

// NewPipeline builds a pipeline over the given gates. With no arguments the
// builtin default set applies.
func NewPipeline(gateSet ...Gate) *Pipeline {
	if len(gateSet) == 0 {
		gateSet = DefaultSet()
	}
	p := &Pipeline{gates: make(map[string]Gate, len(gateSet))}
	for _, g := range gateSet {
		p.gates[g.Name()] = g
	}
	return p
}

// Validate runs every configured gate concurrently and joins the results.
// AND semantics: nil error only if all gates pass. A gate execution error
// (tool crash) returns a retry.TransientError; failing findings return a
// retry.GateFailureError naming the failing gates. The full report list is
// returned in both cases.
func (p *Pipeline) Validate(ctx context.Context, spec *task.Spec, artifact *capability.Artifact) ([]Report, error) {
	logger := ctxlog.FromContext(ctx)

	configured := p.configuredFor(spec)
	if len(configured) == 0 {
		return nil, nil
	}

	reports := make([]Report, len(configured))
	var wg sync.WaitGroup
	for i, name := range configured {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			gate := p.gates[name]
			if ctx.Err() != nil {
				reports[i] = Report{Gate: name, Err: ctx.Err()}
				return
			}
			reports[i] = gate.Check(ctx, spec, artifact, spec.QualityRequirements[name])
		}(i, name)
	}
	wg.Wait()

	var failing []string
	for _, r := range reports {
		if r.Err != nil {
			logger.Warn("Quality gate execution failed.", "gate", r.Gate, "error", r.Err)
			return reports, &retry.TransientError{Err: fmt.Errorf("gate %s crashed: %w", r.Gate, r.Err)}
		}
		if !r.Passed {
			failing = append(failing, r.Gate)
		}
	}
	if len(failing) > 0 {
		logger.Debug("Quality gates rejected artifact.", "task_id", spec.ID, "failing", failing)
		return reports, &retry.GateFailureError{Failing: failing}
	}
	return reports, nil
}

// configuredFor resolves the gate names to run for a spec: its
// quality_requirements keys, or the full builtin set when none are named.
func (p *Pipeline) configuredFor(spec *task.Spec) []string {
	var names []string
	if len(spec.QualityRequirements) > 0 {
		for name := range spec.QualityRequirements {
			if _, ok := p.gates[name]; ok {
				names = append(names, name)
			}
		}
	} else {
		for name := range p.gates {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
