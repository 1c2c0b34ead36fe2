package gates

import (
	"context"

	"github.com/vk/taskgridgo/internal/capability"
	"github.com/vk/taskgridgo/internal/task"
)

// Builtin gate names. These are the gate set the task validator accepts in
// quality_requirements.
const (
	GateTDDCompliance = "tdd_compliance"
	GateSecurity      = "security"
	GatePerformance   = "performance"
	GateCodeQuality   = "code_quality"
)

// Gate is one independent validator over a produced artifact.
type Gate interface {
	// Name returns the gate's configuration key.
	Name() string
	// Check inspects the artifact against the per-task gate config. A
	// returned Report with Err set means the gate itself failed to execute
	// (tool crash), which is distinct from Passed=false (failing findings).
	Check(ctx context.Context, spec *task.Spec, artifact *capability.Artifact, cfg task.GateConfig) Report
}

// Report is the outcome of one gate check.
type Report struct {
	Gate    string  `json:"gate"`
	Passed  bool    `json:"passed"`
	Score   float64 `json:"score"`
	Details string  `json:"details,omitempty"`
	// Findings repeats the artifact findings this gate judged relevant.
	Findings []capability.Finding `json:"findings,omitempty"`
	// Err records a gate execution error (not a failing finding).
	Err error `json:"-"`
}

// KnownGates returns the builtin gate name set used by spec validation.
func KnownGates() map[string]bool {
	return map[string]bool{
		GateTDDCompliance: true,
		GateSecurity:      true,
		GatePerformance:   true,
		GateCodeQuality:   true,
	}
}

// DefaultSet returns the full builtin gate set in a stable order.
func DefaultSet() []Gate {
	return []Gate{
		&TDDComplianceGate{},
		&SecurityGate{},
		&PerformanceGate{},
		&CodeQualityGate{},
	}
}
