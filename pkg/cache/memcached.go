package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// Memcached treats expirations above 30 days as absolute unix timestamps.
const memcachedRelativeLimit = 30 * 24 * time.Hour

// expiryHeader is the size of the absolute expiry stored in front of each
// value, since memcached cannot report a key's remaining lifetime.
const expiryHeader = 8

// MemcachedClient is the subset of *memcache.Client used by MemcachedProvider.
type MemcachedClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
	FlushAll() error
	Ping() error
	Close() error
}

// MemcachedProvider stores entries in memcached. Clear only supports the
// empty prefix because memcached cannot enumerate keys.
type MemcachedProvider struct {
	client MemcachedClient
	now    func() time.Time
}

func newMemcachedFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewMemcachedProvider(cfg.Memcached)
}

// NewMemcachedProvider connects to cfg.Servers.
func NewMemcachedProvider(cfg MemcachedConfig) (*MemcachedProvider, error) {
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("%w: memcached: at least one server is required", ErrInvalidConfig)
	}

	client := memcache.New(cfg.Servers...)
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}
	if cfg.MaxIdleConns > 0 {
		client.MaxIdleConns = cfg.MaxIdleConns
	}
	return NewMemcachedProviderWithClient(client), nil
}

// NewMemcachedProviderWithClient wraps an existing client.
func NewMemcachedProviderWithClient(client MemcachedClient) *MemcachedProvider {
	return &MemcachedProvider{client: client, now: time.Now}
}

func (p *MemcachedProvider) Name() string { return string(ProviderMemcached) }

func (p *MemcachedProvider) Get(_ context.Context, key string) ([]byte, error) {
	value, _, err := p.get(key)
	return value, err
}

func (p *MemcachedProvider) get(key string) ([]byte, time.Time, error) {
	item, err := p.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	if len(item.Value) < expiryHeader {
		return nil, time.Time{}, fmt.Errorf("cache: memcached value for %q has no expiry header", key)
	}

	var expiresAt time.Time
	if ts := int64(binary.BigEndian.Uint64(item.Value[:expiryHeader])); ts > 0 {
		expiresAt = time.Unix(ts, 0)
	}
	return item.Value[expiryHeader:], expiresAt, nil
}

func (p *MemcachedProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, expiryHeader+len(value))
	copy(buf[expiryHeader:], value)

	item := &memcache.Item{Key: key, Value: buf}
	if ttl > 0 {
		expiresAt := p.now().Add(ttl)
		// Round sub-second TTLs up so they do not become "never expire".
		secs := max(int64((ttl+time.Second-1)/time.Second), 1)
		if ttl > memcachedRelativeLimit {
			secs = expiresAt.Unix()
		}
		item.Expiration = int32(secs)
		binary.BigEndian.PutUint64(buf[:expiryHeader], uint64(expiresAt.Unix()))
	}
	return p.client.Set(item)
}

func (p *MemcachedProvider) Delete(_ context.Context, key string) error {
	err := p.client.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

func (p *MemcachedProvider) Exists(_ context.Context, key string) (bool, error) {
	_, err := p.client.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, memcache.ErrCacheMiss):
		return false, nil
	default:
		return false, err
	}
}

// TTL reads the expiry stored alongside the value.
func (p *MemcachedProvider) TTL(_ context.Context, key string) (time.Duration, error) {
	_, expiresAt, err := p.get(key)
	if err != nil {
		return 0, err
	}
	if expiresAt.IsZero() {
		return NoExpiration, nil
	}
	return max(expiresAt.Sub(p.now()), 0), nil
}

// Clear flushes every server. A non-empty prefix returns ErrUnsupported.
func (p *MemcachedProvider) Clear(_ context.Context, prefix string) error {
	if prefix != "" {
		return fmt.Errorf("%w: memcached cannot clear by prefix", ErrUnsupported)
	}
	return p.client.FlushAll()
}

func (p *MemcachedProvider) Health(context.Context) (failover.HealthInfo, error) {
	if err := p.client.Ping(); err != nil {
		return failover.HealthInfo{}, err
	}
	return failover.HealthInfo{OK: true, Message: "all servers reachable"}, nil
}

// Close closes the client connections.
func (p *MemcachedProvider) Close() error {
	return p.client.Close()
}
