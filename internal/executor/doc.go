// Package executor runs compiled plans: it dispatches each layer into
// a bounded worker pool, drives every task through execute, test and
// validate phases, applies the retry policy on failure, and propagates
// fatal failures to transitive dependents as skips.
package executor
