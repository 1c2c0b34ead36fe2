package capability

import (
	"context"
	"time"

	"github.com/vk/taskgridgo/internal/task"
)

// Capability produces an implementation artifact from a task's embedded
// context. Implementations must be stateless with respect to the engine: no
// shared mutable state, no reliance on sibling task outcomes. Run must honor
// context cancellation.
type Capability interface {
	// Name returns the capability's registry key.
	Name() string
	// Run executes one task and returns the produced artifact.
	Run(ctx context.Context, spec *task.Spec) (*Artifact, error)
}

// Artifact is the work product of one capability run, carrying everything
// the quality gates inspect.
type Artifact struct {
	// Ref is an opaque reference to the produced artifact (path, URL, commit).
	Ref string `json:"ref"`
	// Files lists artifact files, when the backend reports them.
	Files []string `json:"files,omitempty"`
	// TestCommand, when set and Tests is nil, tells the engine how to run
	// the artifact's generated test suite.
	TestCommand []string `json:"test_command,omitempty"`
	// Tests holds test-suite results. Capabilities that run their own tests
	// fill this in; otherwise the engine's TestRunner populates it.
	Tests *TestSuite `json:"tests,omitempty"`
	// Metrics carries named measurements (coverage_pct, duration_seconds,
	// memory_mb, complexity, style_violations, ...) consumed by gates.
	Metrics map[string]float64 `json:"metrics,omitempty"`
	// Findings lists analyzer findings (security scan, lint) for the gates.
	Findings []Finding `json:"findings,omitempty"`
}

// TestSuite summarizes one run of the artifact's test suite.
type TestSuite struct {
	Total       int           `json:"total"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	CoveragePct float64       `json:"coverage_pct"`
	Duration    time.Duration `json:"duration"`
}

// Finding is a single analyzer finding attached to an artifact.
type Finding struct {
	Tool     string `json:"tool"`
	Severity string `json:"severity"`
	RuleID   string `json:"rule_id,omitempty"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
}

// TestRunner runs an artifact's generated test suite. The engine invokes it
// only when the capability did not already report results.
type TestRunner interface {
	RunTests(ctx context.Context, artifact *Artifact) (*TestSuite, error)
}

// Severity levels recognized in findings.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)
