// Package capability defines the injected contract that actually produces a
// task's implementation artifact. The engine treats it as a black box: a
// pure function from a task spec to an artifact. Builtin implementations
// live under the top-level modules/ directory and register themselves here.
package capability
