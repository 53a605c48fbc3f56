package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// headerMessageID carries Message.ID on produced records.
const headerMessageID = "message-id"

// KafkaMetadata refreshes cluster metadata. sarama.Client satisfies it.
type KafkaMetadata interface {
	RefreshMetadata(topics ...string) error
}

// KafkaProvider publishes each queue as a topic. It is publish-only:
// Receive and Ack return ErrUnsupported.
type KafkaProvider struct {
	producer sarama.SyncProducer
	meta     KafkaMetadata
	closers  []func() error
}

func newKafkaFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewKafkaProvider(cfg.Kafka)
}

// NewKafkaProvider connects to cfg.Brokers with an idempotent sync producer.
func NewKafkaProvider(cfg KafkaConfig) (*KafkaProvider, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: kafka: at least one broker is required", ErrInvalidConfig)
	}
	sc, err := kafkaConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := sarama.NewClient(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: create client: %w", err)
	}
	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka producer: create sync producer: %w", err)
	}

	p := NewKafkaProviderWithProducer(producer, client)
	p.closers = append(p.closers, client.Close)
	return p, nil
}

// NewKafkaProviderWithProducer wraps an existing producer. meta may be nil,
// in which case Health only reports that the producer exists.
func NewKafkaProviderWithProducer(producer sarama.SyncProducer, meta KafkaMetadata) *KafkaProvider {
	return &KafkaProvider{producer: producer, meta: meta}
}

func kafkaConfig(cfg KafkaConfig) (*sarama.Config, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Version = sarama.V2_5_0_0
	if cfg.Version != "" {
		v, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("%w: kafka: %w", ErrInvalidConfig, err)
		}
		sc.Version = v
	}
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 6
	sc.Producer.Retry.Backoff = 250 * time.Millisecond
	sc.Producer.Return.Errors = true
	sc.Producer.Return.Successes = true
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	return sc, nil
}

func (p *KafkaProvider) Name() string { return string(ProviderKafka) }

// Send produces msg to the topic named queue, keyed by the message ID, and
// returns that ID.
func (p *KafkaProvider) Send(_ context.Context, queue string, msg Message) (string, error) {
	if msg.Delay > 0 {
		return "", failover.NewProviderError(p.Name(), 0, false,
			fmt.Errorf("%w: delayed delivery", ErrUnsupported))
	}
	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}

	headers := make([]sarama.RecordHeader, 0, len(msg.Attributes)+1)
	headers = append(headers, sarama.RecordHeader{Key: []byte(headerMessageID), Value: []byte(id)})
	for k, v := range msg.Attributes {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   queue,
		Key:     sarama.StringEncoder(id),
		Value:   sarama.ByteEncoder(msg.Body),
		Headers: headers,
	})
	if err != nil {
		return "", failover.NewProviderError(p.Name(), 0, isTemporaryKafka(err), err)
	}
	return id, nil
}

// Receive is not supported; consume Kafka topics with a consumer group.
func (p *KafkaProvider) Receive(context.Context, string, ReceiveOptions) ([]Received, error) {
	return nil, ErrUnsupported
}

// Ack is not supported.
func (p *KafkaProvider) Ack(context.Context, string, string) error {
	return ErrUnsupported
}

// Health refreshes cluster metadata.
func (p *KafkaProvider) Health(context.Context) (failover.HealthInfo, error) {
	if p.meta == nil {
		return failover.HealthInfo{OK: true, Message: "producer ready"}, nil
	}
	if err := p.meta.RefreshMetadata(); err != nil {
		return failover.HealthInfo{}, err
	}
	return failover.HealthInfo{OK: true, Message: "metadata refreshed"}, nil
}

// Close closes the producer and then the underlying client, if any.
func (p *KafkaProvider) Close() error {
	errs := []error{p.producer.Close()}
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func isTemporaryKafka(err error) bool {
	if errorsIsAny(err,
		sarama.ErrOutOfBrokers,
		sarama.ErrNotConnected,
		sarama.ErrNotLeaderForPartition,
		sarama.ErrLeaderNotAvailable,
		sarama.ErrRequestTimedOut,
		sarama.ErrNotEnoughReplicas,
		sarama.ErrNotEnoughReplicasAfterAppend,
		sarama.ErrNetworkException,
	) {
		return true
	}
	var kerr sarama.KError
	if errors.As(err, &kerr) {
		return false
	}
	return retry.IsRetryable(err)
}

func errorsIsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
