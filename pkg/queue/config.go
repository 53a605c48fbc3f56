package queue

import (
	"strings"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/awsclient"
	"github.com/praveentcom/basepack-sub001/pkg/redis"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// ProviderConfig selects a backend and carries every adapter's settings.
type ProviderConfig struct {
	Name ProviderName `yaml:"name"`

	Memory MemoryConfig `yaml:"memory"`
	Redis  RedisConfig  `yaml:"redis"`
	SQS    SQSConfig    `yaml:"sqs"`
	NATS   NATSConfig   `yaml:"nats"`
	Kafka  KafkaConfig  `yaml:"kafka"`
}

// MemoryConfig tunes the in-process queue.
type MemoryConfig struct {
	// ReapInterval is how often expired visibility timeouts are released.
	ReapInterval time.Duration `env:"REAP_INTERVAL" envDefault:"1s" yaml:"reap_interval"`
}

// RedisConfig configures the Redis streams backend.
type RedisConfig struct {
	redis.Config `yaml:",inline"`
	// Group is the consumer group every receiver joins.
	Group string `env:"GROUP" envDefault:"basepack" yaml:"group"`
	// KeyPrefix namespaces the stream and delayed-set keys.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"queue:" yaml:"key_prefix"`
	// MaxLen trims streams approximately to this length. Zero disables trimming.
	MaxLen int64 `env:"MAX_LEN" envDefault:"0" yaml:"max_len"`
}

// SQSConfig configures the SQS backend.
type SQSConfig struct {
	awsclient.Config `yaml:",inline"`
	// QueueURLs maps queue names to URLs. Unmapped names are resolved with
	// GetQueueUrl.
	QueueURLs map[string]string `env:"QUEUE_URLS" envSeparator:"," envKeyValSeparator:"=" yaml:"queue_urls"`
}

// NATSConfig configures the JetStream backend.
type NATSConfig struct {
	URL string `env:"URL" envDefault:"nats://localhost:4222" yaml:"url"`
	// Stream is the JetStream stream holding every queue subject.
	Stream string `env:"STREAM" envDefault:"QUEUES" yaml:"stream"`
	// SubjectPrefix is joined with the queue name to form the subject.
	SubjectPrefix string        `env:"SUBJECT_PREFIX" envDefault:"queues" yaml:"subject_prefix"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"5s" yaml:"timeout"`
}

// KafkaConfig configures the Kafka producer.
type KafkaConfig struct {
	Brokers  []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092" yaml:"brokers"`
	ClientID string   `env:"CLIENT_ID" envDefault:"basepack" yaml:"client_id"`
	// Version is the broker protocol version, e.g. "2.5.0".
	Version string `env:"VERSION" envDefault:"2.5.0" yaml:"version"`
}

// ServiceConfig configures a Service and its backend.
type ServiceConfig struct {
	Provider ProviderConfig `yaml:"provider"`
	// Retry governs Send retries on transient failures; nil keeps
	// retry.DefaultOptions.
	Retry *retry.Options `yaml:"-"`
}

// Config is the environment representation of ServiceConfig.
type Config struct {
	Provider        string        `env:"QUEUE_PROVIDER" envDefault:"memory"`
	Retries         int           `env:"QUEUE_RETRIES" envDefault:"3"`
	RetryMinTimeout time.Duration `env:"QUEUE_RETRY_MIN_TIMEOUT" envDefault:"1s"`
	RetryMaxTimeout time.Duration `env:"QUEUE_RETRY_MAX_TIMEOUT" envDefault:"30s"`
	RetryFactor     float64       `env:"QUEUE_RETRY_FACTOR" envDefault:"2"`

	Memory MemoryConfig `envPrefix:"QUEUE_MEMORY_"`
	Redis  RedisConfig  `envPrefix:"QUEUE_REDIS_"`
	SQS    SQSConfig    `envPrefix:"QUEUE_SQS_"`
	NATS   NATSConfig   `envPrefix:"QUEUE_NATS_"`
	Kafka  KafkaConfig  `envPrefix:"QUEUE_KAFKA_"`
}

// ServiceConfig converts the env configuration into a ServiceConfig.
func (c Config) ServiceConfig() ServiceConfig {
	return ServiceConfig{
		Provider: ProviderConfig{
			Name:   ProviderName(strings.ToLower(strings.TrimSpace(c.Provider))),
			Memory: c.Memory,
			Redis:  c.Redis,
			SQS:    c.SQS,
			NATS:   c.NATS,
			Kafka:  c.Kafka,
		},
		Retry: &retry.Options{
			Retries:    c.Retries,
			MinTimeout: c.RetryMinTimeout,
			MaxTimeout: c.RetryMaxTimeout,
			Factor:     c.RetryFactor,
		},
	}
}
