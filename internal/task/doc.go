// Package task defines the TaskSpec model: a self-contained description of
// one unit of work, carrying everything needed to execute it independently.
// Specs are immutable after validation; the engine never writes to them.
package task
