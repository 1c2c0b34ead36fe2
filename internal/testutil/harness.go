// Package testutil provides the shared harness for end-to-end engine
// tests: it materializes task and config files in a temp directory,
// runs the app, and captures logs and the final report.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/taskgridgo/internal/app"
	"github.com/vk/taskgridgo/internal/config"
	"github.com/vk/taskgridgo/internal/session"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an end-to-end engine run.
type HarnessResult struct {
	LogOutput string
	Report    *session.Report
	Err       error
}

// RunEngineTest writes the given files (relative paths, e.g.
// "tasks/batch.json") into a temp directory, builds an app over cfg
// with the echo capability as default, and runs the named tasks path.
func RunEngineTest(t *testing.T, files map[string]string, tasksPath string, mutate func(*config.Config)) *HarnessResult {
	t.Helper()
	return RunEngineTestWithContext(context.Background(), t, files, tasksPath, mutate)
}

// RunEngineTestWithContext is RunEngineTest with a caller-owned context,
// for cancellation tests.
func RunEngineTestWithContext(ctx context.Context, t *testing.T, files map[string]string, tasksPath string, mutate func(*config.Config)) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg := config.Default()
	cfg.Capability = "echo"
	cfg.LogLevel = "debug"
	if mutate != nil {
		mutate(&cfg)
	}

	logBuffer := &SafeBuffer{}
	result := &HarnessResult{}

	a, err := app.NewApp(ctx, logBuffer, &cfg)
	if err != nil {
		result.Err = err
		result.LogOutput = logBuffer.String()
		return result
	}
	defer a.Close() //nolint:errcheck

	result.Report, result.Err = a.Run(ctx, filepath.Join(tmpDir, tasksPath))
	result.LogOutput = logBuffer.String()
	return result
}
