// Package dag builds the directed acyclic dependency graph over a validated
// batch of task specs. Build rejects unknown edge endpoints and cycles; on
// success the returned graph is immutable and safe for concurrent reads.
package dag
