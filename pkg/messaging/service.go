package messaging

import (
	"context"
	"log/slog"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/logger"
	"github.com/praveentcom/basepack-sub001/pkg/metrics"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

const serviceName = "messaging"

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

// WithRetry sets the default retry options of the service.
func WithRetry(opts retry.Options) Option {
	return func(o *serviceOptions) { o.retry = &opts }
}

// Service sends text messages through a primary gateway with ordered backups.
type Service struct {
	orch   *failover.Orchestrator[Message]
	retry  retry.Options
	logger *slog.Logger
}

// NewService builds every configured gateway up front.
func NewService(ctx context.Context, cfg ServiceConfig, opts ...Option) (*Service, error) {
	o := applyOptions(opts)

	primary, backups, err := registry.BuildChain(ctx, failover.ChainSpec[ProviderConfig]{
		Primary: cfg.Primary,
		Backups: cfg.Backups,
		NameOf:  func(c ProviderConfig) string { return string(c.Name) },
		Lenient: cfg.LenientBackups,
		Logger:  o.logger,
	})
	if err != nil {
		return nil, err
	}
	if o.retry == nil {
		o.retry = cfg.Retry
	}
	return newService(primary, backups, o)
}

// NewServiceWithProviders wraps already constructed providers.
func NewServiceWithProviders(primary Provider, backups []Provider, opts ...Option) (*Service, error) {
	return newService(primary, backups, applyOptions(opts))
}

func applyOptions(opts []Option) serviceOptions {
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logger.OrNop(o.logger)
	return o
}

func newService(primary Provider, backups []Provider, o serviceOptions) (*Service, error) {
	orch, err := failover.New(primary, backups,
		failover.WithLogger(o.logger),
		failover.WithMetrics(o.metrics),
		failover.WithService(serviceName),
	)
	if err != nil {
		return nil, err
	}

	retryOpts := retry.DefaultOptions()
	if o.retry != nil {
		retryOpts = retryOpts.Merge(o.retry)
	}
	return &Service{
		orch:   orch,
		retry:  retryOpts,
		logger: o.logger.With(logger.Service(serviceName)),
	}, nil
}

// Send validates and delivers the configured message or batch.
func (s *Service) Send(ctx context.Context, cfg SendConfig) ([]Result, error) {
	messages, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	if !cfg.SkipValidation {
		if err := validateAll(messages); err != nil {
			s.logger.DebugContext(ctx, "message validation failed", logger.Error(err))
			return nil, err
		}
	}
	return s.orch.Send(ctx, messages, s.retry.Merge(cfg.Options))
}

// Health reports every gateway's status keyed by provider name.
func (s *Service) Health(ctx context.Context) map[string]failover.HealthInfo {
	return s.orch.Health(ctx)
}

// Primary, Backups and Providers expose the chain in send order.
func (s *Service) Primary() Provider     { return s.orch.Primary() }
func (s *Service) Backups() []Provider   { return s.orch.Backups() }
func (s *Service) Providers() []Provider { return s.orch.Providers() }

// Close closes every provider in the chain.
func (s *Service) Close() error {
	return s.orch.Close()
}
