package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "basepack"

// PrometheusSink implements Sink with Prometheus collectors.
type PrometheusSink struct {
	providerAttempts *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	retries          *prometheus.CounterVec
	failovers        *prometheus.CounterVec
	resolved         *prometheus.CounterVec
	operations       *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
}

// NewPrometheusSink creates collectors and registers them with reg.
// Collectors that are already registered are reused, so several services can
// share one registry.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		providerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Provider steps of send calls by outcome.",
		}, []string{"service", "provider", "outcome"}),
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_attempt_duration_seconds",
			Help:      "Duration of a provider step including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"service", "provider"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retries scheduled against a provider.",
		}, []string{"service", "provider"}),
		failovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failover_messages_total",
			Help:      "Messages handed from one provider to the next.",
		}, []string{"service", "from", "to"}),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_delivered_total",
			Help:      "Messages delivered successfully per provider.",
		}, []string{"service", "provider"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Cache and queue operations by result.",
		}, []string{"service", "provider", "operation", "result"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Cache and queue operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "provider", "operation"}),
	}

	s.providerAttempts = register(reg, s.providerAttempts)
	s.providerDuration = register(reg, s.providerDuration)
	s.retries = register(reg, s.retries)
	s.failovers = register(reg, s.failovers)
	s.resolved = register(reg, s.resolved)
	s.operations = register(reg, s.operations)
	s.operationLatency = register(reg, s.operationLatency)
	return s
}

func (s *PrometheusSink) ProviderAttempt(service, provider, outcome string, d time.Duration) {
	s.providerAttempts.WithLabelValues(service, provider, outcome).Inc()
	s.providerDuration.WithLabelValues(service, provider).Observe(d.Seconds())
}

func (s *PrometheusSink) RetryAttempt(service, provider string) {
	s.retries.WithLabelValues(service, provider).Inc()
}

func (s *PrometheusSink) Failover(service, from, to string, messages int) {
	s.failovers.WithLabelValues(service, from, to).Add(float64(messages))
}

func (s *PrometheusSink) MessagesResolved(service, provider string, count int) {
	if count <= 0 {
		return
	}
	s.resolved.WithLabelValues(service, provider).Add(float64(count))
}

func (s *PrometheusSink) OperationCompleted(service, provider, operation string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.operations.WithLabelValues(service, provider, operation, result).Inc()
	s.operationLatency.WithLabelValues(service, provider, operation).Observe(d.Seconds())
}

// register adds c to reg, returning the existing collector when an identical
// one was registered earlier. A nil registerer leaves c unregistered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}
