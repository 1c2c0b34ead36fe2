package gates

import (
	"context"
	"fmt"

	"github.com/vk/taskgridgo/internal/capability"
	"github.com/vk/taskgridgo/internal/task"
)

// defaultCoveragePct is the minimum test coverage the TDD gate requires when
// the task does not configure its own threshold.
const defaultCoveragePct = 80.0

// TDDComplianceGate verifies the artifact shipped a passing test suite with
// sufficient coverage.
type TDDComplianceGate struct{}

func (g *TDDComplianceGate) Name() string { return GateTDDCompliance }

func (g *TDDComplianceGate) Check(_ context.Context, _ *task.Spec, artifact *capability.Artifact, cfg task.GateConfig) Report {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = defaultCoveragePct
	}

	if artifact.Tests == nil {
		return Report{
			Gate:    GateTDDCompliance,
			Passed:  false,
			Details: "artifact has no test suite results",
		}
	}

	suite := artifact.Tests
	passed := suite.Total > 0 && suite.Failed == 0 && suite.CoveragePct >= threshold
	score := 0.0
	if suite.Total > 0 {
		score = float64(suite.Passed) / float64(suite.Total)
	}
	return Report{
		Gate:   GateTDDCompliance,
		Passed: passed,
		Score:  score,
		Details: fmt.Sprintf("%d/%d tests passed, %.1f%% coverage (minimum %.1f%%)",
			suite.Passed, suite.Total, suite.CoveragePct, threshold),
	}
}

// SecurityGate fails on any high or critical severity finding.
type SecurityGate struct{}

func (g *SecurityGate) Name() string { return GateSecurity }

func (g *SecurityGate) Check(_ context.Context, _ *task.Spec, artifact *capability.Artifact, _ task.GateConfig) Report {
	var relevant []capability.Finding
	blocking := 0
	for _, f := range artifact.Findings {
		if f.Tool != "lint" {
			relevant = append(relevant, f)
		}
		switch f.Severity {
		case capability.SeverityHigh, capability.SeverityCritical:
			blocking++
		}
	}

	score := 1.0
	if len(relevant) > 0 {
		score = 1.0 - float64(blocking)/float64(len(relevant))
	}
	return Report{
		Gate:     GateSecurity,
		Passed:   blocking == 0,
		Score:    score,
		Details:  fmt.Sprintf("%d findings, %d blocking", len(relevant), blocking),
		Findings: relevant,
	}
}

// PerformanceGate compares artifact metrics against the task's named limits.
// Without configured limits the gate passes with a full score: no budget
// means nothing to enforce.
type PerformanceGate struct{}

func (g *PerformanceGate) Name() string { return GatePerformance }

func (g *PerformanceGate) Check(_ context.Context, _ *task.Spec, artifact *capability.Artifact, cfg task.GateConfig) Report {
	if len(cfg.Limits) == 0 {
		return Report{Gate: GatePerformance, Passed: true, Score: 1.0, Details: "no performance budgets configured"}
	}

	within, total := 0, 0
	details := ""
	for metric, limit := range cfg.Limits {
		value, measured := artifact.Metrics[metric]
		if !measured {
			// An unmeasured budgeted metric is a failure: the benchmark
			// never ran.
			total++
			details += fmt.Sprintf("%s not measured; ", metric)
			continue
		}
		total++
		if value <= limit {
			within++
		} else {
			details += fmt.Sprintf("%s %.2f over budget %.2f; ", metric, value, limit)
		}
	}

	return Report{
		Gate:    GatePerformance,
		Passed:  within == total,
		Score:   float64(within) / float64(total),
		Details: fmt.Sprintf("%d/%d budgets met. %s", within, total, details),
	}
}

// CodeQualityGate fails on lint findings and style violations reported in
// the artifact metrics.
type CodeQualityGate struct{}

func (g *CodeQualityGate) Name() string { return GateCodeQuality }

func (g *CodeQualityGate) Check(_ context.Context, _ *task.Spec, artifact *capability.Artifact, cfg task.GateConfig) Report {
	var lintFindings []capability.Finding
	for _, f := range artifact.Findings {
		if f.Tool == "lint" {
			lintFindings = append(lintFindings, f)
		}
	}
	violations := artifact.Metrics["style_violations"]

	maxComplexity := cfg.Limits["max_complexity"]
	complexityOK := true
	if maxComplexity > 0 {
		if c, ok := artifact.Metrics["complexity"]; ok && c > maxComplexity {
			complexityOK = false
		}
	}

	passed := len(lintFindings) == 0 && violations == 0 && complexityOK
	score := 1.0
	if !passed {
		score = 1.0 / (1.0 + float64(len(lintFindings)) + violations)
	}
	return Report{
		Gate:     GateCodeQuality,
		Passed:   passed,
		Score:    score,
		Details:  fmt.Sprintf("%d lint findings, %.0f style violations", len(lintFindings), violations),
		Findings: lintFindings,
	}
}
