package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/logger"
	"github.com/praveentcom/basepack-sub001/pkg/metrics"
)

const serviceName = "cache"

type serviceOptions struct {
	logger  *slog.Logger
	metrics metrics.Sink
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

// Service fronts a single store with key prefixing, a default TTL,
// logging and metrics. Reads and writes are not retried or failed over.
type Service struct {
	provider   Provider
	prefix     string
	defaultTTL time.Duration
	logger     *slog.Logger
	metrics    metrics.Sink
}

// NewService builds the configured store.
func NewService(ctx context.Context, cfg ServiceConfig, opts ...Option) (*Service, error) {
	p, err := NewProvider(ctx, cfg.Provider)
	if err != nil {
		return nil, err
	}
	return NewServiceWithProvider(p, cfg.Prefix, cfg.DefaultTTL, opts...), nil
}

// NewServiceWithProvider wraps an already constructed store.
func NewServiceWithProvider(p Provider, prefix string, defaultTTL time.Duration, opts ...Option) *Service {
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		provider:   p,
		prefix:     prefix,
		defaultTTL: defaultTTL,
		logger:     logger.OrNop(o.logger).With(logger.Service(serviceName), logger.Provider(p.Name())),
		metrics:    metrics.OrNoop(o.metrics),
	}
}

func (s *Service) key(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	return s.prefix + key, nil
}

// observe records an operation. A cache miss is not an error.
func (s *Service) observe(ctx context.Context, op, key string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	d := time.Since(start)
	s.metrics.OperationCompleted(serviceName, s.provider.Name(), op, d, err)
	if err != nil {
		s.logger.WarnContext(ctx, "cache operation failed",
			slog.String("operation", op),
			logger.Key(key),
			logger.Duration(d),
			logger.Error(err),
		)
	}
}

// Get returns ErrNotFound for missing or expired keys.
func (s *Service) Get(ctx context.Context, key string) (val []byte, err error) {
	k, err := s.key(key)
	if err != nil {
		return nil, err
	}
	defer func(start time.Time) { s.observe(ctx, "get", k, start, err) }(time.Now())
	return s.provider.Get(ctx, k)
}

// Set stores value. A zero ttl uses the default TTL; NoExpiration stores the
// value without expiry.
func (s *Service) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (err error) {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	switch {
	case ttl == 0:
		ttl = s.defaultTTL
	case ttl < 0:
		ttl = 0
	}
	defer func(start time.Time) { s.observe(ctx, "set", k, start, err) }(time.Now())
	return s.provider.Set(ctx, k, value, ttl)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Service) Delete(ctx context.Context, key string) (err error) {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	defer func(start time.Time) { s.observe(ctx, "delete", k, start, err) }(time.Now())
	return s.provider.Delete(ctx, k)
}

// Exists reports whether key is present and unexpired.
func (s *Service) Exists(ctx context.Context, key string) (ok bool, err error) {
	k, err := s.key(key)
	if err != nil {
		return false, err
	}
	defer func(start time.Time) { s.observe(ctx, "exists", k, start, err) }(time.Now())
	return s.provider.Exists(ctx, k)
}

// TTL returns the remaining lifetime of key or NoExpiration.
func (s *Service) TTL(ctx context.Context, key string) (d time.Duration, err error) {
	k, err := s.key(key)
	if err != nil {
		return 0, err
	}
	defer func(start time.Time) { s.observe(ctx, "ttl", k, start, err) }(time.Now())
	return s.provider.TTL(ctx, k)
}

// Clear removes every key under the service prefix. Without a prefix the
// whole store is cleared.
func (s *Service) Clear(ctx context.Context) (err error) {
	defer func(start time.Time) { s.observe(ctx, "clear", s.prefix, start, err) }(time.Now())
	return s.provider.Clear(ctx, s.prefix)
}

// Health reports the store status keyed by provider name.
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

// Provider returns the underlying store.
func (s *Service) Provider() Provider { return s.provider }

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.provider.Close()
}

// GetJSON reads key and decodes it into a T.
func GetJSON[T any](ctx context.Context, s *Service, key string) (T, error) {
	var v T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return v, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s *Service, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw, ttl)
}
