package queue

import "errors"

var (
	ErrInvalidConfig   = errors.New("queue: invalid provider config")
	ErrUnknownProvider = errors.New("queue: unknown provider")

	// ErrUnsupported is returned for operations a backend cannot perform,
	// such as Receive on the publish-only kafka provider.
	ErrUnsupported = errors.New("queue: operation not supported by provider")

	ErrEmptyQueueName = errors.New("queue: queue name is required")
	ErrEmptyBody      = errors.New("queue: message body is required")

	// ErrReceiptNotFound is returned by Ack for unknown or expired receipts.
	ErrReceiptNotFound = errors.New("queue: receipt not found")

	ErrPayloadMarshal = errors.New("queue: failed to marshal payload to JSON")
	ErrNoHandler      = errors.New("queue: consumer has no handler")
)
