package config

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/taskgridgo/internal/ctxlog"
)

// fileConfig is the HCL shape of a taskgrid config file. All attributes are
// optional; absent ones keep their resolved defaults.
type fileConfig struct {
	MaxParallelAgents   *int    `hcl:"max_parallel_agents,optional"`
	ExecutionStrategy   *string `hcl:"execution_strategy,optional"`
	TaskTimeoutMinutes  *int    `hcl:"task_timeout_minutes,optional"`
	MaxRetries          *int    `hcl:"max_retries,optional"`
	QualityGatesEnabled *bool   `hcl:"quality_gates_enabled,optional"`
	Capability          *string `hcl:"capability,optional"`
	LogFormat           *string `hcl:"log_format,optional"`
	LogLevel            *string `hcl:"log_level,optional"`
	HealthcheckPort     *int    `hcl:"healthcheck_port,optional"`
	NATSURL             *string `hcl:"nats_url,optional"`
	ProgressSubject     *string `hcl:"progress_subject,optional"`
}

// Load resolves the session configuration: defaults, then the optional HCL
// file at path, then environment overrides, then validation.
func Load(ctx context.Context, path string) (Config, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := Default()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
		logger.Debug("Configuration file applied.", "path", path)
	}

	applyEnv(ctx, &cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("Configuration resolved.",
		"strategy", cfg.ExecutionStrategy,
		"max_parallel_agents", cfg.MaxParallelAgents,
		"task_timeout", cfg.TaskTimeout,
		"max_retries", cfg.MaxRetries)
	return cfg, nil
}

// applyFile decodes one HCL file onto cfg. Config files may reference the
// host core count, e.g. `max_parallel_agents = cores * 2`.
func applyFile(cfg *Config, path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"cores": cty.NumberIntVal(int64(runtime.NumCPU())),
		},
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &fc); diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	// Strategy first: explicit attribute values beat the preset.
	if fc.ExecutionStrategy != nil {
		if err := cfg.ApplyStrategy(Strategy(*fc.ExecutionStrategy)); err != nil {
			return err
		}
	}
	if fc.MaxParallelAgents != nil {
		cfg.MaxParallelAgents = *fc.MaxParallelAgents
	}
	if fc.TaskTimeoutMinutes != nil {
		cfg.TaskTimeout = time.Duration(*fc.TaskTimeoutMinutes) * time.Minute
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if fc.QualityGatesEnabled != nil {
		cfg.QualityGatesEnabled = *fc.QualityGatesEnabled
	}
	if fc.Capability != nil {
		cfg.Capability = *fc.Capability
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.HealthcheckPort != nil {
		cfg.HealthcheckPort = *fc.HealthcheckPort
	}
	if fc.NATSURL != nil {
		cfg.NATSURL = *fc.NATSURL
	}
	if fc.ProgressSubject != nil {
		cfg.ProgressSubject = *fc.ProgressSubject
	}
	return nil
}

// applyEnv applies environment variable overrides. Invalid values are
// logged and ignored so a stray variable cannot brick a run.
func applyEnv(ctx context.Context, cfg *Config) {
	logger := ctxlog.FromContext(ctx)

	if v := os.Getenv("TASKGRID_STRATEGY"); v != "" {
		if err := cfg.ApplyStrategy(Strategy(v)); err != nil {
			logger.Warn("Ignoring invalid TASKGRID_STRATEGY.", "value", v)
		}
	}
	if v := os.Getenv("TASKGRID_MAX_AGENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxParallelAgents = n
		} else {
			logger.Warn("Ignoring invalid TASKGRID_MAX_AGENTS.", "value", v)
		}
	}
	if v := os.Getenv("TASKGRID_TIMEOUT_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TaskTimeout = time.Duration(n) * time.Minute
		} else {
			logger.Warn("Ignoring invalid TASKGRID_TIMEOUT_MINUTES.", "value", v)
		}
	}
	if v := os.Getenv("TASKGRID_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		} else {
			logger.Warn("Ignoring invalid TASKGRID_MAX_RETRIES.", "value", v)
		}
	}
}
