package queue

import (
	"log/slog"
	"time"
)

// ConsumerOption configures a Consumer.
type ConsumerOption func(*consumerOptions)

type consumerOptions struct {
	pollInterval      time.Duration
	visibilityTimeout time.Duration
	waitTime          time.Duration
	batchSize         int
	maxConcurrent     int
	logger            *slog.Logger
}

// WithPollInterval sets how long the consumer idles after an empty receive.
func WithPollInterval(d time.Duration) ConsumerOption {
	return func(o *consumerOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithVisibilityTimeout sets how long a received message stays hidden. It
// also bounds each handler call.
func WithVisibilityTimeout(d time.Duration) ConsumerOption {
	return func(o *consumerOptions) {
		if d > 0 {
			o.visibilityTimeout = d
		}
	}
}

// WithWaitTime enables long polling on backends that support it.
func WithWaitTime(d time.Duration) ConsumerOption {
	return func(o *consumerOptions) {
		if d >= 0 {
			o.waitTime = d
		}
	}
}

// WithBatchSize caps how many messages one Receive call asks for.
func WithBatchSize(n int) ConsumerOption {
	return func(o *consumerOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithMaxConcurrent sets how many messages are handled at once.
func WithMaxConcurrent(n int) ConsumerOption {
	return func(o *consumerOptions) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

// WithConsumerLogger sets the consumer logger.
func WithConsumerLogger(l *slog.Logger) ConsumerOption {
	return func(o *consumerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
