package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGates = map[string]bool{
	"tdd_compliance": true,
	"security":       true,
}

func completeSpec(id string, deps ...string) *Spec {
	return &Spec{
		ID:                 id,
		Title:              "task " + id,
		Context:            json.RawMessage(`{"goal":"build the thing"}`),
		Dependencies:       deps,
		AcceptanceCriteria: []string{"it compiles", "tests pass"},
	}
}

func TestValidateComplete(t *testing.T) {
	spec := completeSpec("a")
	batch := map[string]*Spec{"a": spec}

	err := Validate(spec, batch, testGates)
	assert.NoError(t, err)
}

func TestValidateMissingFields(t *testing.T) {
	spec := &Spec{ID: "a"}
	batch := map[string]*Spec{"a": spec}

	err := Validate(spec, batch, testGates)
	require.Error(t, err)

	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "a", incomplete.TaskID)
	assert.Contains(t, incomplete.Missing, "context")
	assert.Contains(t, incomplete.Missing, "acceptance_criteria")
}

func TestValidateUnknownDependency(t *testing.T) {
	spec := completeSpec("a", "ghost")
	batch := map[string]*Spec{"a": spec}

	err := Validate(spec, batch, testGates)
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Len(t, incomplete.Missing, 1)
	assert.Contains(t, incomplete.Missing[0], "ghost")
}

func TestValidateSelfDependency(t *testing.T) {
	spec := completeSpec("a", "a")
	batch := map[string]*Spec{"a": spec}

	err := Validate(spec, batch, testGates)
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Contains(t, incomplete.Missing[0], "self-reference")
}

func TestValidateUnknownGate(t *testing.T) {
	spec := completeSpec("a")
	spec.QualityRequirements = map[string]GateConfig{"vibes": {}}
	batch := map[string]*Spec{"a": spec}

	err := Validate(spec, batch, testGates)
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Contains(t, incomplete.Missing[0], "vibes")
}

func TestValidateBatchDuplicateID(t *testing.T) {
	specs := []*Spec{completeSpec("a"), completeSpec("a")}

	_, errs := ValidateBatch(specs, testGates)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "duplicate task id")
}

func TestValidateBatchIsolatesFailures(t *testing.T) {
	good := completeSpec("good")
	bad := &Spec{ID: "bad"}

	batch, errs := ValidateBatch([]*Spec{good, bad}, testGates)
	require.Len(t, errs, 1)
	assert.Len(t, batch, 2)

	var incomplete *IncompleteError
	require.ErrorAs(t, errs[0], &incomplete)
	assert.Equal(t, "bad", incomplete.TaskID)
}

func TestEffectiveTimeout(t *testing.T) {
	spec := completeSpec("a")
	assert.Equal(t, 30*time.Minute, spec.EffectiveTimeout(30*time.Minute))

	spec.TimeoutSeconds = 90
	assert.Equal(t, 90*time.Second, spec.EffectiveTimeout(30*time.Minute))
}
