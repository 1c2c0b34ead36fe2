package task

import (
	"fmt"
	"strings"
)

// IncompleteError reports a spec that is not self-contained enough to execute
// in isolation. It is fatal for the offending spec only.
type IncompleteError struct {
	TaskID  string
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("task %q is incomplete: missing %s", e.TaskID, strings.Join(e.Missing, ", "))
}

// Validate checks that a spec is executable in isolation. The batch map is
// used to verify every dependency references a spec in the same batch, and
// knownGates to verify quality requirements name real gates. It returns an
// *IncompleteError listing every missing field, or nil. Pure check, no side
// effects.
func Validate(spec *Spec, batch map[string]*Spec, knownGates map[string]bool) error {
	var missing []string

	if spec.ID == "" {
		missing = append(missing, "id")
	}
	if len(spec.Context) == 0 || string(spec.Context) == "null" {
		missing = append(missing, "context")
	}
	if len(spec.AcceptanceCriteria) == 0 {
		missing = append(missing, "acceptance_criteria")
	}
	for _, dep := range spec.Dependencies {
		if dep == spec.ID {
			missing = append(missing, fmt.Sprintf("dependencies (self-reference %q)", dep))
			continue
		}
		if _, ok := batch[dep]; !ok {
			missing = append(missing, fmt.Sprintf("dependencies (unknown task %q)", dep))
		}
	}
	for name := range spec.QualityRequirements {
		if !knownGates[name] {
			missing = append(missing, fmt.Sprintf("quality_requirements (unknown gate %q)", name))
		}
	}

	if len(missing) > 0 {
		return &IncompleteError{TaskID: spec.ID, Missing: missing}
	}
	return nil
}

// ValidateBatch validates every spec against its batch and rejects duplicate
// IDs. It returns the batch keyed by ID plus the per-spec validation errors.
func ValidateBatch(specs []*Spec, knownGates map[string]bool) (map[string]*Spec, []error) {
	batch := make(map[string]*Spec, len(specs))
	var errs []error
	for _, s := range specs {
		if _, dup := batch[s.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate task id %q", s.ID))
			continue
		}
		batch[s.ID] = s
	}
	for _, s := range specs {
		if err := Validate(s, batch, knownGates); err != nil {
			errs = append(errs, err)
		}
	}
	return batch, errs
}
