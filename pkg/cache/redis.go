package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/redis"
)

// deleteBatch caps the number of keys passed to one DEL during Clear.
const deleteBatch = 500

// RedisProvider stores entries in Redis.
type RedisProvider struct {
	db            goredis.UniversalClient
	scanBatchSize int64
}

func newRedisFactory(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	return NewRedisProvider(ctx, cfg.Redis)
}

// NewRedisProvider connects to Redis, retrying the initial ping.
func NewRedisProvider(ctx context.Context, cfg redis.Config) (*RedisProvider, error) {
	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: redis: %w", ErrInvalidConfig, err)
	}
	return NewRedisProviderWithClient(client, cfg.ScanBatchSize), nil
}

// NewRedisProviderWithClient wraps an existing client. Close closes it.
func NewRedisProviderWithClient(client goredis.UniversalClient, scanBatchSize int64) *RedisProvider {
	if scanBatchSize <= 0 {
		scanBatchSize = 1000
	}
	return &RedisProvider{db: client, scanBatchSize: scanBatchSize}
}

func (p *RedisProvider) Name() string { return string(ProviderRedis) }

// Get maps redis.Nil to ErrNotFound.
func (p *RedisProvider) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := p.db.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	return val, err
}

// Set stores key-value with expiration. A non-positive ttl means no expiration.
func (p *RedisProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return p.db.Set(ctx, key, value, ttl).Err()
}

func (p *RedisProvider) Delete(ctx context.Context, key string) error {
	return p.db.Del(ctx, key).Err()
}

func (p *RedisProvider) Exists(ctx context.Context, key string) (bool, error) {
	n, err := p.db.Exists(ctx, key).Result()
	return n > 0, err
}

// TTL translates the -1 and -2 replies into NoExpiration and ErrNotFound.
func (p *RedisProvider) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := p.db.PTTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// PTTL replies -2 for a missing key and -1 for a key without expiry.
	switch d {
	case -2:
		return 0, ErrNotFound
	case -1:
		return NoExpiration, nil
	}
	return d, nil
}

// Clear deletes keys matching prefix with SCAN + DEL. An empty prefix runs
// FLUSHDB and affects the entire Redis database.
func (p *RedisProvider) Clear(ctx context.Context, prefix string) error {
	if prefix == "" {
		return p.db.FlushDB(ctx).Err()
	}

	keys, err := redis.ScanKeys(ctx, p.db, escapeGlob(prefix)+"*", p.scanBatchSize)
	if err != nil {
		return err
	}
	for start := 0; start < len(keys); start += deleteBatch {
		end := min(start+deleteBatch, len(keys))
		if err := p.db.Del(ctx, keys[start:end]...).Err(); err != nil {
			return err
		}
	}
	return nil
}

func escapeGlob(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`).Replace(s)
}

// Health pings the server.
func (p *RedisProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	if err := redis.Healthcheck(p.db)(ctx); err != nil {
		return failover.HealthInfo{}, err
	}
	return failover.HealthInfo{OK: true, Message: "PONG"}, nil
}

// Close terminates the Redis connection.
func (p *RedisProvider) Close() error {
	return p.db.Close()
}
