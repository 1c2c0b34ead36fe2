package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskgrid.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, StrategyHybrid, cfg.ExecutionStrategy)
	assert.Equal(t, 30*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.True(t, cfg.AutoRetry)
	assert.True(t, cfg.QualityGatesEnabled)
	assert.GreaterOrEqual(t, cfg.MaxParallelAgents, 1)
	assert.LessOrEqual(t, cfg.MaxParallelAgents, 10, "derived parallelism is capped")
	assert.NoError(t, cfg.Validate())
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
max_parallel_agents   = 4
task_timeout_minutes  = 10
max_retries           = 1
quality_gates_enabled = false
log_format            = "json"
`)
	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxParallelAgents)
	assert.Equal(t, 10*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.False(t, cfg.QualityGatesEnabled)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadStrategyPreset(t *testing.T) {
	path := writeConfig(t, `execution_strategy = "aggressive"`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, StrategyAggressive, cfg.ExecutionStrategy)
	assert.Equal(t, 5, cfg.MaxParallelAgents)
	assert.Equal(t, 20*time.Minute, cfg.TaskTimeout)
	assert.False(t, cfg.AutoRetry)
}

func TestLoadStrategyPresetThenExplicitOverride(t *testing.T) {
	path := writeConfig(t, `
execution_strategy  = "sequential"
max_parallel_agents = 2
`)
	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, StrategySequential, cfg.ExecutionStrategy)
	assert.Equal(t, 2, cfg.MaxParallelAgents, "explicit attribute beats the preset")
	assert.Equal(t, 45*time.Minute, cfg.TaskTimeout)
}

func TestLoadCoresExpression(t *testing.T) {
	path := writeConfig(t, `max_parallel_agents = cores * 2`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU()*2, cfg.MaxParallelAgents)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TASKGRID_STRATEGY", "conservative")
	t.Setenv("TASKGRID_MAX_AGENTS", "7")

	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StrategyConservative, cfg.ExecutionStrategy)
	assert.Equal(t, 7, cfg.MaxParallelAgents, "env agent count beats the strategy preset")
	assert.Equal(t, 60*time.Minute, cfg.TaskTimeout)
}

func TestLoadEnvInvalidIgnored(t *testing.T) {
	t.Setenv("TASKGRID_MAX_AGENTS", "many")
	t.Setenv("TASKGRID_STRATEGY", "yolo")

	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `max_parallel_agents = 0`)

	_, err := Load(context.Background(), path)
	assert.ErrorContains(t, err, "max_parallel_agents must be >= 1")
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	path := writeConfig(t, `execution_strategy = "reckless"`)

	_, err := Load(context.Background(), path)
	assert.ErrorContains(t, err, "unknown execution_strategy")
}

func TestValidateLogSettings(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	assert.ErrorContains(t, cfg.Validate(), "log_format")

	cfg = Default()
	cfg.LogLevel = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "log_level")
}
