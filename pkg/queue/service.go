package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/logger"
	"github.com/praveentcom/basepack-sub001/pkg/metrics"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

const serviceName = "queue"

// AttrContentType is set by SendJSON.
const AttrContentType = "content-type"

type serviceOptions struct {
	logger  *slog.Logger
	metrics metrics.Sink
	retry   *retry.Options
}

// Option configures a Service.
type Option func(*serviceOptions)

// WithLogger sets the logger; the default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

// WithMetrics sets the metrics sink; the default records nothing.
func WithMetrics(s metrics.Sink) Option {
	return func(o *serviceOptions) { o.metrics = s }
}

// WithRetry overrides the Send retry options.
func WithRetry(opts retry.Options) Option {
	return func(o *serviceOptions) { o.retry = &opts }
}

// Service fronts a single queue backend. Send is retried on transient
// failures; Receive and Ack are not.
type Service struct {
	provider Provider
	retry    retry.Options
	logger   *slog.Logger
	metrics  metrics.Sink
}

// NewService builds the configured backend.
func NewService(ctx context.Context, cfg ServiceConfig, opts ...Option) (*Service, error) {
	p, err := NewProvider(ctx, cfg.Provider)
	if err != nil {
		return nil, err
	}
	if cfg.Retry != nil {
		opts = append([]Option{WithRetry(*cfg.Retry)}, opts...)
	}
	return NewServiceWithProvider(p, opts...), nil
}

// NewServiceWithProvider wraps an already constructed backend.
func NewServiceWithProvider(p Provider, opts ...Option) *Service {
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		provider: p,
		retry:    retry.DefaultOptions().Merge(o.retry),
		logger:   logger.OrNop(o.logger).With(logger.Service(serviceName), logger.Provider(p.Name())),
		metrics:  metrics.OrNoop(o.metrics),
	}
}

func (s *Service) observe(ctx context.Context, op, queue string, start time.Time, err error) {
	d := time.Since(start)
	s.metrics.OperationCompleted(serviceName, s.provider.Name(), op, d, err)
	if err != nil {
		s.logger.WarnContext(ctx, "queue operation failed",
			slog.String("operation", op),
			logger.Queue(queue),
			logger.Duration(d),
			logger.Error(err),
		)
	}
}

// Send enqueues msg and returns its id.
func (s *Service) Send(ctx context.Context, queue string, msg Message) (id string, err error) {
	if queue == "" {
		return "", ErrEmptyQueueName
	}
	if len(msg.Body) == 0 {
		return "", ErrEmptyBody
	}
	defer func(start time.Time) { s.observe(ctx, "send", queue, start, err) }(time.Now())

	opts := s.retry
	next := opts.OnRetry
	opts.OnRetry = func(err error, attempt int) {
		if next != nil {
			next(err, attempt)
		}
		s.metrics.RetryAttempt(serviceName, s.provider.Name())
		s.logger.DebugContext(ctx, "retrying queue send",
			logger.Queue(queue),
			logger.Attempt(attempt),
			logger.Error(err),
		)
	}
	return retry.Do(ctx, func(ctx context.Context) (string, error) {
		return s.provider.Send(ctx, queue, msg)
	}, opts)
}

// SendJSON encodes v as the message body.
func (s *Service) SendJSON(ctx context.Context, queue string, v any, attrs map[string]string) (string, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPayloadMarshal, err)
	}
	merged := make(map[string]string, len(attrs)+1)
	for k, val := range attrs {
		merged[k] = val
	}
	merged[AttrContentType] = "application/json"
	return s.Send(ctx, queue, Message{Body: body, Attributes: merged})
}

// Receive returns the next batch of messages, possibly empty.
func (s *Service) Receive(ctx context.Context, queue string, opts ReceiveOptions) (msgs []Received, err error) {
	if queue == "" {
		return nil, ErrEmptyQueueName
	}
	defer func(start time.Time) { s.observe(ctx, "receive", queue, start, err) }(time.Now())
	return s.provider.Receive(ctx, queue, opts.normalized())
}

// Ack permanently removes a received message.
func (s *Service) Ack(ctx context.Context, queue, receipt string) (err error) {
	if queue == "" {
		return ErrEmptyQueueName
	}
	defer func(start time.Time) { s.observe(ctx, "ack", queue, start, err) }(time.Now())
	return s.provider.Ack(ctx, queue, receipt)
}

// Health reports the backend status keyed by provider name.
func (s *Service) Health(ctx context.Context) (report map[string]failover.HealthInfo) {
	name := s.provider.Name()
	defer func() {
		if r := recover(); r != nil {
			report = map[string]failover.HealthInfo{name: {OK: false, Message: fmt.Sprintf("health check panicked: %v", r)}}
		}
	}()

	info, err := s.provider.Health(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "provider health check failed", logger.Error(err))
		info = failover.HealthInfo{OK: false, Message: err.Error()}
	}
	return map[string]failover.HealthInfo{name: info}
}

// Provider returns the underlying backend.
func (s *Service) Provider() Provider { return s.provider }

// Close releases the backend.
func (s *Service) Close() error {
	return s.provider.Close()
}
