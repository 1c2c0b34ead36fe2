// Package session holds the mutable state of one engine run: the
// per-task result state machine, the session record, the single-writer
// aggregator that owns it, and the final report.
package session
