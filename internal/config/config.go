package config

import (
	"fmt"
	"runtime"
	"time"
)

// Strategy selects a coordinated preset of concurrency and retry settings.
type Strategy string

const (
	StrategyAggressive   Strategy = "aggressive"
	StrategyConservative Strategy = "conservative"
	StrategyHybrid       Strategy = "hybrid"
	StrategySequential   Strategy = "sequential"
)

// maxParallelCap bounds the derived default parallelism.
const maxParallelCap = 10

// Config is the resolved run configuration for one session.
type Config struct {
	// MaxParallelAgents bounds concurrently executing tasks.
	MaxParallelAgents int
	// ExecutionStrategy names the preset the config was resolved from.
	ExecutionStrategy Strategy
	// TaskTimeout is the per-task execution deadline (capability call, test
	// run, and gate pipeline together).
	TaskTimeout time.Duration
	// MaxRetries bounds resubmissions of a failed task.
	MaxRetries int
	// AutoRetry disables resubmission entirely when false.
	AutoRetry bool
	// QualityGatesEnabled toggles the gate pipeline.
	QualityGatesEnabled bool
	// Capability names the registered executor capability to run tasks with.
	Capability string

	// LogFormat is "text" or "json"; LogLevel is debug/info/warn/error.
	LogFormat string
	LogLevel  string

	// HealthcheckPort serves /health, /status and /metrics when positive.
	HealthcheckPort int

	// NATSURL plus ProgressSubject enable the NATS progress sink.
	NATSURL         string
	ProgressSubject string
}

// Default returns the engine defaults: hybrid strategy semantics with
// parallelism derived from the host (2x cores, capped).
func Default() Config {
	return Config{
		MaxParallelAgents:   defaultParallelAgents(),
		ExecutionStrategy:   StrategyHybrid,
		TaskTimeout:         30 * time.Minute,
		MaxRetries:          2,
		AutoRetry:           true,
		QualityGatesEnabled: true,
		Capability:          "script",
		LogFormat:           "text",
		LogLevel:            "info",
		ProgressSubject:     "taskgrid.progress",
	}
}

func defaultParallelAgents() int {
	n := 2 * runtime.NumCPU()
	if n > maxParallelCap {
		n = maxParallelCap
	}
	if n < 1 {
		n = 1
	}
	return n
}

// strategyPresets captures how each strategy trades throughput against
// safety: aggressive runs wide and never retries, conservative runs narrow
// with long deadlines, sequential serializes everything.
var strategyPresets = map[Strategy]struct {
	agents    int
	timeout   time.Duration
	autoRetry bool
}{
	StrategyAggressive:   {agents: 5, timeout: 20 * time.Minute, autoRetry: false},
	StrategyConservative: {agents: 2, timeout: 60 * time.Minute, autoRetry: true},
	StrategyHybrid:       {agents: 3, timeout: 30 * time.Minute, autoRetry: true},
	StrategySequential:   {agents: 1, timeout: 45 * time.Minute, autoRetry: true},
}

// ApplyStrategy overwrites the preset-controlled fields. Called only when
// the strategy was chosen explicitly; the bare defaults keep the
// host-derived parallelism instead.
func (c *Config) ApplyStrategy(s Strategy) error {
	preset, ok := strategyPresets[s]
	if !ok {
		return fmt.Errorf("unknown execution_strategy %q", s)
	}
	c.ExecutionStrategy = s
	c.MaxParallelAgents = preset.agents
	c.TaskTimeout = preset.timeout
	c.AutoRetry = preset.autoRetry
	return nil
}

// Validate checks the resolved configuration for feasibility.
func (c *Config) Validate() error {
	if c.MaxParallelAgents < 1 {
		return fmt.Errorf("max_parallel_agents must be >= 1, got %d", c.MaxParallelAgents)
	}
	if c.TaskTimeout < time.Minute {
		return fmt.Errorf("task_timeout_minutes must be >= 1, got %s", c.TaskTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries)
	}
	if _, ok := strategyPresets[c.ExecutionStrategy]; !ok {
		return fmt.Errorf("unknown execution_strategy %q", c.ExecutionStrategy)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be 'text' or 'json', got %q", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}
