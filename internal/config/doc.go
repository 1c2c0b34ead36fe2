// Package config holds the run configuration for an execution session:
// parallelism, execution strategy, timeouts, retry budget, and gate
// enforcement. Values resolve in order: engine defaults, strategy preset,
// HCL config file, environment overrides.
package config
