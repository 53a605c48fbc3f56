package cache

import (
	"strings"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/redis"
)

// ProviderConfig selects a store and carries every adapter's settings.
type ProviderConfig struct {
	Name ProviderName `yaml:"name"`

	Redis     redis.Config    `yaml:"redis"`
	Memcached MemcachedConfig `yaml:"memcached"`
	Memory    MemoryConfig    `yaml:"memory"`
}

// MemcachedConfig lists the memcached servers and client timeouts.
type MemcachedConfig struct {
	Servers      []string      `env:"SERVERS" envSeparator:"," envDefault:"localhost:11211" yaml:"servers"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"500ms" yaml:"timeout"`
	MaxIdleConns int           `env:"MAX_IDLE_CONNS" envDefault:"2" yaml:"max_idle_conns"`
}

// MemoryConfig bounds the in-process cache.
type MemoryConfig struct {
	// MaxEntries bounds the store; the least recently used entry is evicted beyond it.
	MaxEntries int `env:"MAX_ENTRIES" envDefault:"10000" yaml:"max_entries"`
}

// ServiceConfig configures a Service and its single store.
type ServiceConfig struct {
	Provider ProviderConfig `yaml:"provider"`
	// Prefix is prepended to every key.
	Prefix string `yaml:"prefix"`
	// DefaultTTL applies when Set is called with a zero ttl.
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// Config is the environment representation of ServiceConfig.
type Config struct {
	Provider   string        `env:"CACHE_PROVIDER" envDefault:"memory"`
	Prefix     string        `env:"CACHE_PREFIX"`
	DefaultTTL time.Duration `env:"CACHE_DEFAULT_TTL" envDefault:"0s"`

	Redis     redis.Config    `envPrefix:"CACHE_REDIS_"`
	Memcached MemcachedConfig `envPrefix:"CACHE_MEMCACHED_"`
	Memory    MemoryConfig    `envPrefix:"CACHE_MEMORY_"`
}

// ServiceConfig converts the env configuration into a ServiceConfig.
func (c Config) ServiceConfig() ServiceConfig {
	return ServiceConfig{
		Provider: ProviderConfig{
			Name:      ProviderName(strings.ToLower(strings.TrimSpace(c.Provider))),
			Redis:     c.Redis,
			Memcached: c.Memcached,
			Memory:    c.Memory,
		},
		Prefix:     c.Prefix,
		DefaultTTL: c.DefaultTTL,
	}
}
