package echo

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskgridgo/internal/capability"
	"github.com/vk/taskgridgo/internal/task"
)

func TestRunDefaultArtifact(t *testing.T) {
	e := &Echo{}
	spec := &task.Spec{ID: "t1", Context: json.RawMessage(`{"message":"hi"}`)}

	artifact, err := e.Run(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "echo://t1", artifact.Ref)
	require.NotNil(t, artifact.Tests)
	assert.Zero(t, artifact.Tests.Failed)
}

func TestRunEchoesEmbeddedArtifact(t *testing.T) {
	e := &Echo{}
	spec := &task.Spec{ID: "t1", Context: json.RawMessage(
		`{"artifact":{"ref":"custom","findings":[{"tool":"scanner","severity":"critical","message":"boom"}]}}`,
	)}

	artifact, err := e.Run(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "custom", artifact.Ref)
	require.Len(t, artifact.Findings, 1)
	assert.Equal(t, capability.SeverityCritical, artifact.Findings[0].Severity)
}

func TestRunRejectsMalformedContext(t *testing.T) {
	e := &Echo{}
	spec := &task.Spec{ID: "t1", Context: json.RawMessage(`not json`)}

	_, err := e.Run(context.Background(), spec)
	assert.Error(t, err)
}
