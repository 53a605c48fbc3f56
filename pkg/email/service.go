package email

import (
	"context"
	"log/slog"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/logger"
	"github.com/praveentcom/basepack-sub001/pkg/metrics"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

const serviceName = "email"

type serviceOptions struct {
	logger  *slog.Logger
	metrics metrics.Sink
	from    string
	retry   *retry.Options
}

// Option configures a Service.
type Option func(*serviceOptions)

// WithLogger sets the service logger. Without it nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(s metrics.Sink) Option {
	return func(o *serviceOptions) { o.metrics = s }
}

// WithDefaultFrom sets the sender used for messages without From.
func WithDefaultFrom(from string) Option {
	return func(o *serviceOptions) { o.from = from }
}

// WithRetry sets the default retry options of the service.
func WithRetry(opts retry.Options) Option {
	return func(o *serviceOptions) { o.retry = &opts }
}

// Service sends email through a primary provider with ordered backups.
type Service struct {
	orch   *failover.Orchestrator[Message]
	retry  retry.Options
	from   string
	logger *slog.Logger
}

// NewService builds every configured provider up front. A backup that fails
// to build fails the whole call unless cfg.LenientBackups is set.
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

	if o.from == "" {
		o.from = cfg.Primary.From
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
	o := serviceOptions{}
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
		from:   o.from,
		logger: o.logger.With(logger.Service(serviceName)),
	}, nil
}

// Send validates and delivers the configured message or batch. It returns one
// Result per message in input order.
func (s *Service) Send(ctx context.Context, cfg SendConfig) ([]Result, error) {
	messages, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	messages = s.withDefaults(messages)
	if !cfg.SkipValidation {
		if err := validateAll(messages); err != nil {
			s.logger.DebugContext(ctx, "email validation failed", logger.Error(err))
			return nil, err
		}
	}

	return s.orch.Send(ctx, messages, s.retry.Merge(cfg.Options))
}

// withDefaults fills the default sender without touching the caller's slice.
func (s *Service) withDefaults(messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	if s.from == "" {
		return out
	}
	for i := range out {
		if out[i].From == "" {
			out[i].From = s.from
		}
	}
	return out
}

// Health reports every provider's status keyed by provider name.
func (s *Service) Health(ctx context.Context) map[string]failover.HealthInfo {
	return s.orch.Health(ctx)
}

// Primary, Backups and Providers expose the chain in send order.
func (s *Service) Primary() Provider     { return s.orch.Primary() }
func (s *Service) Backups() []Provider   { return s.orch.Backups() }
func (s *Service) Providers() []Provider { return s.orch.Providers() }

// Close releases provider connections.
func (s *Service) Close() error {
	return s.orch.Close()
}
