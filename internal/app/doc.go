// Package app wires the engine together: configuration, logging, the
// capability registry, progress sinks, metrics, and the status HTTP
// server. The CLI is a thin shell around this package.
package app
