package task

import (
	"encoding/json"
	"time"
)

// Spec is a single self-contained task specification. The Context payload is
// opaque to the engine; it is handed verbatim to the executor capability.
type Spec struct {
	// ID is the unique identifier of the task within its batch.
	ID string `json:"id" yaml:"id"`
	// Title is a short human-readable description.
	Title string `json:"title" yaml:"title"`
	// Context carries the complete embedded context for stateless execution.
	Context json.RawMessage `json:"context" yaml:"context"`
	// Dependencies lists IDs of tasks that must succeed before this one runs.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	// AcceptanceCriteria is the ordered list of checkable statements the
	// produced artifact must satisfy.
	AcceptanceCriteria []string `json:"acceptance_criteria" yaml:"acceptance_criteria"`
	// QualityRequirements configures the quality gates to run, keyed by gate
	// name. An empty map means the engine's default gate set applies.
	QualityRequirements map[string]GateConfig `json:"quality_requirements,omitempty" yaml:"quality_requirements,omitempty"`
	// Priority breaks ordering ties within an execution layer, descending.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`
	// TimeoutSeconds overrides the configured per-task timeout when positive.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// GateConfig carries per-task tuning for one named quality gate.
type GateConfig struct {
	// Threshold is the gate's primary pass threshold (meaning is gate
	// specific, e.g. minimum coverage percentage). Zero means gate default.
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	// Limits holds named numeric budgets the gate compares against artifact
	// metrics, e.g. "max_duration_seconds" or "max_memory_mb".
	Limits map[string]float64 `json:"limits,omitempty" yaml:"limits,omitempty"`
}

// EffectiveTimeout returns the task's own timeout if set, otherwise the
// provided session default.
func (s *Spec) EffectiveTimeout(def time.Duration) time.Duration {
	if s.TimeoutSeconds > 0 {
		return time.Duration(s.TimeoutSeconds) * time.Second
	}
	return def
}
