package failover

import "context"

// Provider delivers a batch of messages through one external service.
// Send must return exactly one Result per message, in input order. Returning
// an error means nothing in the batch was delivered.
type Provider[M any] interface {
	Name() string
	Send(ctx context.Context, messages []M) ([]Result, error)
}

// Tagged is implemented by messages that carry caller metadata. The
// orchestrator copies it onto the message's Result; keys set by the adapter
// take precedence.
type Tagged interface {
	ResultMetadata() map[string]string
}

// HealthChecker is implemented by providers that can report their status.
type HealthChecker interface {
	Health(ctx context.Context) (HealthInfo, error)
}

// HealthInfo describes a provider's status.
type HealthInfo struct {
	OK      bool           `json:"ok"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}
