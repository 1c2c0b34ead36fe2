package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskgridgo/internal/config"
	"github.com/vk/taskgridgo/internal/session"
)

func writeTasks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Capability = "echo"
	cfg.LogLevel = "error"
	return &cfg
}

const twoTaskBatch = `[
  {
    "id": "fetch",
    "title": "Fetch inputs",
    "context": {"message": "fetch"},
    "acceptance_criteria": ["inputs present"]
  },
  {
    "id": "build",
    "title": "Build output",
    "context": {"message": "build"},
    "dependencies": ["fetch"],
    "acceptance_criteria": ["output present"]
  }
]`

func TestAppRunEndToEnd(t *testing.T) {
	var out bytes.Buffer
	a, err := NewApp(context.Background(), &out, testConfig())
	require.NoError(t, err)
	defer a.Close()

	report, err := a.Run(context.Background(), writeTasks(t, twoTaskBatch))
	require.NoError(t, err)
	assert.Equal(t, session.StateCompleted, report.State)
	assert.True(t, report.Succeeded())

	var decoded session.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded), "final report is printed as JSON")
	assert.Equal(t, report.SessionID, decoded.SessionID)
	assert.Len(t, decoded.Tasks, 2)
}

func TestAppCompileOnly(t *testing.T) {
	a, err := NewApp(context.Background(), &bytes.Buffer{}, testConfig())
	require.NoError(t, err)
	defer a.Close()

	plan, err := a.Compile(context.Background(), writeTasks(t, twoTaskBatch))
	require.NoError(t, err)
	assert.Equal(t, 2, plan.TotalTasks())
	assert.Len(t, plan.Layers, 2)
}

func TestAppCompileRejectsCycle(t *testing.T) {
	a, err := NewApp(context.Background(), &bytes.Buffer{}, testConfig())
	require.NoError(t, err)
	defer a.Close()

	batch := `[
      {"id": "a", "context": {}, "dependencies": ["b"], "acceptance_criteria": ["x"]},
      {"id": "b", "context": {}, "dependencies": ["a"], "acceptance_criteria": ["x"]}
    ]`
	_, err = a.Compile(context.Background(), writeTasks(t, batch))
	assert.ErrorContains(t, err, "cycle")
}

func TestAppRunUnknownCapability(t *testing.T) {
	cfg := testConfig()
	cfg.Capability = "nope"
	a, err := NewApp(context.Background(), &bytes.Buffer{}, cfg)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Run(context.Background(), writeTasks(t, twoTaskBatch))
	assert.ErrorContains(t, err, "no capability registered")
}
