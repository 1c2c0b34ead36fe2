// Package monitor holds the Prometheus instrumentation for the
// execution engine. All methods are safe on a nil receiver so the
// engine can run uninstrumented.
package monitor
