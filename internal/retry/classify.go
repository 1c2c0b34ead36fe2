package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Class is the failure classification of one task attempt.
type Class int

const (
	// ClassRetryable covers timeouts and transient tool failures; retried
	// with backoff while budget remains.
	ClassRetryable Class = iota
	// ClassResourceExhausted is backpressure; the attempt is requeued
	// without consuming retry budget.
	ClassResourceExhausted
	// ClassQualityGate marks failing gate findings; retried like retryable
	// failures but reported with the failing gate list.
	ClassQualityGate
	// ClassFatal is unrecoverable: no retry, dependents are skipped.
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassRetryable:
		return "retryable"
	case ClassResourceExhausted:
		return "resource_exhausted"
	case ClassQualityGate:
		return "quality_gate_failure"
	case ClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// TransientError marks an error as explicitly retryable.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient failure: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// ResourceExhaustedError signals backpressure from the execution backend.
type ResourceExhaustedError struct {
	Err error
}

func (e *ResourceExhaustedError) Error() string { return fmt.Sprintf("resource exhausted: %v", e.Err) }
func (e *ResourceExhaustedError) Unwrap() error { return e.Err }

// GateFailureError carries the names of the quality gates whose findings
// failed a validated artifact.
type GateFailureError struct {
	Failing []string
}

func (e *GateFailureError) Error() string {
	return fmt.Sprintf("quality gates failed: %s", strings.Join(e.Failing, ", "))
}

// FatalError marks an error as unrecoverable regardless of remaining budget.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("fatal failure: %v", e.Err) }
func (e *FatalError) Unwrap() error { return e.Err }

// Classify maps an attempt error onto its failure class. Timeouts are
// retryable; unknown capability errors default to retryable so that a
// transient backend hiccup gets its bounded second chance before the budget
// converts it to fatal.
func Classify(err error) Class {
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return ClassFatal
	}
	var exhausted *ResourceExhaustedError
	if errors.As(err, &exhausted) {
		return ClassResourceExhausted
	}
	var gate *GateFailureError
	if errors.As(err, &gate) {
		return ClassQualityGate
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassRetryable
	}
	return ClassRetryable
}
