package redis

import "time"

// Config describes a Redis connection. Field tags carry no prefix; embed it
// under an envPrefix such as CACHE_REDIS_ or QUEUE_REDIS_.
type Config struct {
	// URL in the form "redis://:password@localhost:6379/0".
	URL string `env:"URL" envDefault:"redis://localhost:6379/0" yaml:"url"`
	// ConnectRetries is how many times a failed ping is retried.
	ConnectRetries int `env:"CONNECT_RETRIES" envDefault:"3" yaml:"connect_retries"`
	// RetryInterval is the first delay between pings; it doubles after each one.
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"1s" yaml:"retry_interval"`
	// ConnectTimeout bounds the whole connect sequence.
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"30s" yaml:"connect_timeout"`
	// ScanBatchSize is the COUNT hint used when scanning keys.
	ScanBatchSize int64 `env:"SCAN_BATCH_SIZE" envDefault:"1000" yaml:"scan_batch_size"`
}
