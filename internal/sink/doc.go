// Package sink delivers session progress events to interested
// consumers: structured logs, a NATS subject, or in-memory buffers for
// tests. Sinks are invoked from the aggregator's single writer
// goroutine, so implementations need no internal ordering.
package sink
