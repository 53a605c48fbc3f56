package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// NATSProvider stores every queue as a subject of one JetStream stream with
// work-queue retention. Each queue is read through a durable pull consumer.
//
// Receipts are only valid on the provider instance that received the message.
type NATSProvider struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
	prefix string

	mu        sync.Mutex
	consumers map[string]natsConsumer
	pending   map[string]jetstream.Msg
}

type natsConsumer struct {
	consumer jetstream.Consumer
	ackWait  time.Duration
}

func newNATSFactory(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	return NewNATSProvider(ctx, cfg.NATS)
}

// NewNATSProvider connects and creates or updates the backing stream.
func NewNATSProvider(ctx context.Context, cfg NATSConfig) (*NATSProvider, error) {
	if cfg.URL == "" || cfg.Stream == "" || cfg.SubjectPrefix == "" {
		return nil, fmt.Errorf("%w: nats: url, stream and subject prefix are required", ErrInvalidConfig)
	}
	opts := []nats.Option{nats.Name("basepack-queue")}
	if cfg.Timeout > 0 {
		opts = append(opts, nats.Timeout(cfg.Timeout))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.SubjectPrefix + ".>"},
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &NATSProvider{
		conn:      conn,
		js:        js,
		stream:    stream,
		prefix:    cfg.SubjectPrefix,
		consumers: make(map[string]natsConsumer),
		pending:   make(map[string]jetstream.Msg),
	}, nil
}

func (p *NATSProvider) Name() string { return string(ProviderNATS) }

func (p *NATSProvider) subject(queue string) string { return p.prefix + "." + queue }

// Send publishes msg. Delayed delivery is not supported.
func (p *NATSProvider) Send(ctx context.Context, queue string, msg Message) (string, error) {
	if msg.Delay > 0 {
		return "", failover.NewProviderError(p.Name(), 0, false,
			fmt.Errorf("%w: delayed delivery", ErrUnsupported))
	}
	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}

	m := nats.NewMsg(p.subject(queue))
	m.Data = msg.Body
	for k, v := range msg.Attributes {
		m.Header.Set(k, v)
	}
	if _, err := p.js.PublishMsg(ctx, m, jetstream.WithMsgID(id)); err != nil {
		return "", failover.NewProviderError(p.Name(), 0, isTemporaryNATS(err), err)
	}
	return id, nil
}

// Receive pulls from the queue's durable consumer.
func (p *NATSProvider) Receive(ctx context.Context, queue string, opts ReceiveOptions) ([]Received, error) {
	opts = opts.normalized()
	c, err := p.consumer(ctx, queue, opts.VisibilityTimeout)
	if err != nil {
		return nil, err
	}

	out, err := p.fetch(c, opts.MaxMessages, 0)
	if err != nil || len(out) > 0 || opts.WaitTime <= 0 {
		return out, err
	}
	// Long poll for the first message only so the call returns as soon as
	// anything arrives.
	return p.fetch(c, 1, opts.WaitTime)
}

func (p *NATSProvider) fetch(c jetstream.Consumer, n int, wait time.Duration) ([]Received, error) {
	var (
		batch jetstream.MessageBatch
		err   error
	)
	if wait > 0 {
		batch, err = c.Fetch(n, jetstream.FetchMaxWait(wait))
	} else {
		batch, err = c.FetchNoWait(n)
	}
	if err != nil {
		return nil, failover.NewProviderError(p.Name(), 0, isTemporaryNATS(err), err)
	}

	var out []Received
	for m := range batch.Messages() {
		meta, err := m.Metadata()
		if err != nil {
			return out, err
		}
		receipt := strconv.FormatUint(meta.Sequence.Stream, 10)

		r := Received{Receipt: receipt, ReceiveCount: int(meta.NumDelivered)}
		r.Body = m.Data()
		for k := range m.Headers() {
			if k == jetstream.MsgIDHeader {
				r.ID = m.Headers().Get(k)
				continue
			}
			if r.Attributes == nil {
				r.Attributes = make(map[string]string)
			}
			r.Attributes[k] = m.Headers().Get(k)
		}

		p.mu.Lock()
		p.pending[receipt] = m
		p.mu.Unlock()
		out = append(out, r)
	}
	if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
		return out, failover.NewProviderError(p.Name(), 0, isTemporaryNATS(err), err)
	}
	return out, nil
}

// consumer returns the durable consumer for queue, updating its ack wait
// when the requested visibility timeout changed.
func (p *NATSProvider) consumer(ctx context.Context, queue string, ackWait time.Duration) (jetstream.Consumer, error) {
	p.mu.Lock()
	c, ok := p.consumers[queue]
	p.mu.Unlock()
	if ok && c.ackWait == ackWait {
		return c.consumer, nil
	}

	consumer, err := p.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       durableName(queue),
		FilterSubject: p.subject(queue),
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       ackWait,
	})
	if err != nil {
		return nil, failover.NewProviderError(p.Name(), 0, isTemporaryNATS(err), err)
	}

	p.mu.Lock()
	p.consumers[queue] = natsConsumer{consumer: consumer, ackWait: ackWait}
	p.mu.Unlock()
	return consumer, nil
}

// Ack waits for the server to confirm the acknowledgement.
func (p *NATSProvider) Ack(ctx context.Context, _, receipt string) error {
	p.mu.Lock()
	m, ok := p.pending[receipt]
	delete(p.pending, receipt)
	p.mu.Unlock()
	if !ok {
		return ErrReceiptNotFound
	}
	return m.DoubleAck(ctx)
}

// Health checks the connection and the stream.
func (p *NATSProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	if status := p.conn.Status(); status != nats.CONNECTED {
		return failover.HealthInfo{OK: false, Message: status.String()}, nil
	}
	info, err := p.stream.Info(ctx)
	if err != nil {
		return failover.HealthInfo{}, err
	}
	return failover.HealthInfo{
		OK:      true,
		Message: "connected",
		Details: map[string]any{
			"stream":    info.Config.Name,
			"messages":  info.State.Msgs,
			"consumers": info.State.Consumers,
		},
	}, nil
}

// Close closes the connection.
func (p *NATSProvider) Close() error {
	p.conn.Close()
	return nil
}

// durableName maps a queue name to a valid consumer name.
func durableName(queue string) string {
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(queue)
}

func isTemporaryNATS(err error) bool {
	switch {
	case err == nil:
		return false
	case errorsIsAny(err, nats.ErrTimeout, nats.ErrConnectionClosed, nats.ErrNoResponders,
		nats.ErrConnectionReconnecting, context.DeadlineExceeded):
		return true
	default:
		return false
	}
}
