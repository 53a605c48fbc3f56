package metrics

import "time"

// Sink records delivery metrics. Implementations must not block and never
// return errors; a broken backend must not affect message delivery.
type Sink interface {
	// ProviderAttempt records one provider step of a send call, after retries.
	ProviderAttempt(service, provider, outcome string, duration time.Duration)
	// RetryAttempt records a retry scheduled against a provider.
	RetryAttempt(service, provider string)
	// Failover records that unresolved messages moved from one provider to the next.
	Failover(service, from, to string, messages int)
	// MessagesResolved records messages a provider delivered successfully.
	MessagesResolved(service, provider string, count int)
	// OperationCompleted records a non-delivery operation (cache get, queue send, ...).
	OperationCompleted(service, provider, operation string, duration time.Duration, err error)
}

// Outcome values for ProviderAttempt.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
	OutcomeError   = "error"
)

// NoopSink discards every measurement.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (NoopSink) ProviderAttempt(string, string, string, time.Duration)           {}
func (NoopSink) RetryAttempt(string, string)                                     {}
func (NoopSink) Failover(string, string, string, int)                            {}
func (NoopSink) MessagesResolved(string, string, int)                            {}
func (NoopSink) OperationCompleted(string, string, string, time.Duration, error) {}

// OrNoop returns s, or a NoopSink when s is nil.
func OrNoop(s Sink) Sink {
	if s == nil {
		return NoopSink{}
	}
	return s
}
