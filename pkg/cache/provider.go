package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// ProviderName identifies a cache store in the registry.
type ProviderName string

const (
	ProviderRedis     ProviderName = "redis"
	ProviderMemcached ProviderName = "memcached"
	ProviderMemory    ProviderName = "memory"
)

// NoExpiration is returned by TTL for keys that never expire. Passed to
// Service.Set it stores the value without expiry.
const NoExpiration time.Duration = -1

// Provider is a key-value store. Implementations proxy to the store's own
// expiry and eviction semantics.
type Provider interface {
	Name() string
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value for ttl. A ttl <= 0 stores it without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// TTL returns the remaining lifetime, NoExpiration for persistent keys
	// and ErrNotFound for missing ones.
	TTL(ctx context.Context, key string) (time.Duration, error)
	// Clear removes every key starting with prefix; an empty prefix clears
	// the whole store.
	Clear(ctx context.Context, prefix string) error
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
	Register(ProviderRedis, newRedisFactory)
	Register(ProviderMemcached, newMemcachedFactory)
	Register(ProviderMemory, newMemoryFactory)
}

// Register makes a store available to NewService under name, replacing any
// factory registered before.
func Register(name ProviderName, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Providers lists the registered store names in sorted order.
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

// NewProvider builds the store named by cfg.Name.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	registryMu.RLock()
	f, ok := registry[cfg.Name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Name)
	}
	return f(ctx, cfg)
}
