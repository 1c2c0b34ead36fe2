// Package gates implements the quality gate pipeline: a fixed set of
// independent validators run concurrently against a task's artifact. A task
// succeeds only if every configured gate passes. A gate that crashes (as
// opposed to one that reports failing findings) makes the attempt retryable.
package gates
