// Package retry classifies task failures and decides whether and when a
// failed attempt is resubmitted. Timeouts and transient tool failures are
// retryable within a bounded budget; backpressure is requeued without
// consuming the budget; everything that exhausts or bypasses the budget
// becomes fatal and propagates to dependents as skips.
package retry
