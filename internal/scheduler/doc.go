// Package scheduler converts the dependency graph into an ordered sequence
// of execution layers. Every task in layer k has all of its dependencies in
// layers < k; tasks within one layer are free to run concurrently. Layer
// membership is deterministic: within a layer tasks are ordered by priority
// descending, then ID ascending.
package scheduler
