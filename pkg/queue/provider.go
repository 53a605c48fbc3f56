package queue

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// Provider is a message queue backend.
type Provider interface {
	Name() string
	// Send enqueues msg and returns the backend message id.
	Send(ctx context.Context, queue string, msg Message) (string, error)
	// Receive returns up to opts.MaxMessages messages, or none when the queue
	// is empty after opts.WaitTime.
	Receive(ctx context.Context, queue string, opts ReceiveOptions) ([]Received, error)
	// Ack removes a received message for good.
	Ack(ctx context.Context, queue, receipt string) error
	Health(ctx context.Context) (failover.HealthInfo, error)
	Close() error
}

// Factory builds a Provider from its configuration.
type Factory func(ctx context.Context, cfg ProviderConfig) (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = map[ProviderName]Factory{}
)

func init() {
	Register(ProviderMemory, newMemoryFactory)
	Register(ProviderRedis, newRedisFactory)
	Register(ProviderSQS, newSQSFactory)
	Register(ProviderNATS, newNATSFactory)
	Register(ProviderKafka, newKafkaFactory)
}

// Register makes a backend available to NewService under name.
func Register(name ProviderName, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Providers returns the registered backend names, sorted.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, string(name))
	}
	slices.Sort(names)
	return names
}

// NewProvider builds the backend named by cfg.Name.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	registryMu.RLock()
	f, ok := registry[cfg.Name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Name)
	}
	return f(ctx, cfg)
}
