package cache

import (
	"context"
	"strings"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// MemoryProvider keeps entries in process memory. It is meant for tests and
// single-instance development setups.
type MemoryProvider struct {
	store *lru[string, []byte]
}

func newMemoryFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewMemoryProvider(cfg.Memory), nil
}

// NewMemoryProvider returns an in-process LRU cache bounded by cfg.MaxEntries.
func NewMemoryProvider(cfg MemoryConfig) *MemoryProvider {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}
	return &MemoryProvider{store: newLRU[string, []byte](cfg.MaxEntries)}
}

func (p *MemoryProvider) Name() string { return string(ProviderMemory) }

// Get returns ErrNotFound for missing and expired keys.
func (p *MemoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	v, _, ok := p.store.get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores value; a ttl of zero or less never expires.
func (p *MemoryProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	p.store.put(key, append([]byte(nil), value...), ttl)
	return nil
}

func (p *MemoryProvider) Delete(_ context.Context, key string) error {
	p.store.remove(key)
	return nil
}

func (p *MemoryProvider) Exists(_ context.Context, key string) (bool, error) {
	_, _, ok := p.store.get(key)
	return ok, nil
}

// TTL returns NoExpiration for keys stored without a ttl.
func (p *MemoryProvider) TTL(_ context.Context, key string) (time.Duration, error) {
	_, expiresAt, ok := p.store.get(key)
	if !ok {
		return 0, ErrNotFound
	}
	if expiresAt.IsZero() {
		return NoExpiration, nil
	}
	return time.Until(expiresAt), nil
}

// Clear removes every key starting with prefix.
func (p *MemoryProvider) Clear(_ context.Context, prefix string) error {
	p.store.removeIf(func(key string) bool { return strings.HasPrefix(key, prefix) })
	return nil
}

func (p *MemoryProvider) Health(context.Context) (failover.HealthInfo, error) {
	return failover.HealthInfo{
		OK:      true,
		Message: "in-memory store",
		Details: map[string]any{"entries": p.store.len()},
	}, nil
}

func (p *MemoryProvider) Close() error { return nil }
