// Package metrics defines the Sink used by basepack services to report
// provider attempts, retries, failovers and operation latency, with a
// Prometheus implementation and a no-op default.
package metrics
