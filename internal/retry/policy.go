package retry

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy holds the retry parameters for one execution session.
type Policy struct {
	// MaxRetries bounds resubmissions per task; attempt_count may reach
	// MaxRetries+1. Exceeding the budget converts the failure to fatal.
	MaxRetries int
	// AutoRetry disables resubmission entirely when false (aggressive
	// strategy); every failure is then fatal on the first attempt.
	AutoRetry bool
	// InitialInterval seeds the exponential backoff between attempts.
	InitialInterval time.Duration
	// MaxInterval caps the backoff growth.
	MaxInterval time.Duration
}

// DefaultPolicy mirrors the engine defaults: two retries with exponential
// backoff starting at one second.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      2,
		AutoRetry:       true,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
	}
}

// NewBackOff returns a fresh exponential backoff sequence for one task. The
// sequence never stops on its own; the budget check decides termination.
func (p Policy) NewBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// ShouldRetry reports whether a failure of the given class may be
// resubmitted after retriesUsed prior retries.
func (p Policy) ShouldRetry(class Class, retriesUsed int) bool {
	switch class {
	case ClassFatal:
		return false
	case ClassResourceExhausted:
		// Requeues bypass the budget entirely.
		return true
	default:
		return p.AutoRetry && retriesUsed < p.MaxRetries
	}
}
