package queue

import (
	"time"
)

// ProviderName identifies a queue backend in the registry.
type ProviderName string

const (
	ProviderMemory ProviderName = "memory"
	ProviderRedis  ProviderName = "redis"
	ProviderSQS    ProviderName = "sqs"
	ProviderNATS   ProviderName = "nats"
	ProviderKafka  ProviderName = "kafka"
)

// Message is a unit of work sent to a queue.
type Message struct {
	// ID is an optional caller supplied identifier used for deduplication
	// where the backend supports it.
	ID         string            `json:"id,omitempty"`
	Body       []byte            `json:"body"`
	Attributes map[string]string `json:"attributes,omitempty"`
	// Delay postpones delivery. Backends without delayed delivery reject it.
	Delay time.Duration `json:"delay,omitempty"`
}

// Received is a message handed to a consumer. Receipt acknowledges it.
type Received struct {
	Message
	Receipt string `json:"receipt"`
	// ReceiveCount is how many times the message has been delivered,
	// including this delivery.
	ReceiveCount int `json:"receive_count"`
}

// ReceiveOptions tunes a single Receive call.
type ReceiveOptions struct {
	// MaxMessages caps the batch size. Defaults to 1.
	MaxMessages int
	// VisibilityTimeout hides received messages from other consumers until
	// they are acknowledged or the timeout passes. Defaults to 30s.
	VisibilityTimeout time.Duration
	// WaitTime long-polls for up to this duration when the queue is empty.
	WaitTime time.Duration
}

const (
	defaultVisibilityTimeout = 30 * time.Second
	maxReceiveBatch          = 10
)

func (o ReceiveOptions) normalized() ReceiveOptions {
	if o.MaxMessages <= 0 {
		o.MaxMessages = 1
	}
	if o.MaxMessages > maxReceiveBatch {
		o.MaxMessages = maxReceiveBatch
	}
	if o.VisibilityTimeout <= 0 {
		o.VisibilityTimeout = defaultVisibilityTimeout
	}
	if o.WaitTime < 0 {
		o.WaitTime = 0
	}
	return o
}
