package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTasks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const batch = `[
  {"id": "a", "context": {"message": "hi"}, "acceptance_criteria": ["done"]},
  {"id": "b", "context": {"message": "ho"}, "dependencies": ["a"], "acceptance_criteria": ["done"]}
]`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := Root(&out)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompileCommandPrintsLayers(t *testing.T) {
	out, err := execute(t, "compile", writeTasks(t, batch), "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "layer 0: [a]")
	assert.Contains(t, out, "layer 1: [b]")
}

func TestRunCommandSucceedsWithEchoCapability(t *testing.T) {
	out, err := execute(t, "run", writeTasks(t, batch),
		"--capability", "echo", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, `"state": "completed"`)
}

func TestRunCommandFailsOnInvalidBatch(t *testing.T) {
	bad := `[{"id": "a", "context": {}, "dependencies": ["missing"], "acceptance_criteria": ["x"]}]`
	_, err := execute(t, "run", writeTasks(t, bad), "--capability", "echo", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile")
}

func TestUnknownStrategyFlagRejected(t *testing.T) {
	_, err := execute(t, "run", writeTasks(t, batch),
		"--capability", "echo", "--strategy", "reckless")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown execution_strategy"))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "taskgrid version")
}
