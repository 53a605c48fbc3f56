package failover

import (
	"log/slog"

	"github.com/praveentcom/basepack-sub001/pkg/metrics"
)

type options struct {
	logger  *slog.Logger
	metrics metrics.Sink
	service string
}

// Option configures an Orchestrator.
type Option func(*options)

// WithLogger sets the logger. A nil logger keeps the default, which discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics sink. A nil sink keeps the no-op default.
func WithMetrics(s metrics.Sink) Option {
	return func(o *options) {
		if s != nil {
			o.metrics = s
		}
	}
}

// WithService labels logs and metrics with the capability name, e.g. "email".
func WithService(name string) Option {
	return func(o *options) {
		if name != "" {
			o.service = name
		}
	}
}
