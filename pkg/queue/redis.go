package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/redis"
)

// Stream entry fields.
const (
	fieldID    = "id"
	fieldBody  = "body"
	fieldAttrs = "attrs"
)

// promoteBatch caps how many delayed messages one Receive moves into the stream.
const promoteBatch = 100

// RedisProvider stores each queue in a Redis stream read through a single
// consumer group. Receipts are stream entry ids. Delayed messages wait in a
// sorted set until their due time.
type RedisProvider struct {
	db       goredis.UniversalClient
	cfg      RedisConfig
	consumer string

	groupsMu sync.Mutex
	groups   map[string]bool
}

type delayedEntry struct {
	ID    string            `json:"id"`
	Body  []byte            `json:"body"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

func newRedisFactory(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	return NewRedisProvider(ctx, cfg.Redis)
}

// NewRedisProvider connects to cfg.URL and consumes as a uniquely named group member.
func NewRedisProvider(ctx context.Context, cfg RedisConfig) (*RedisProvider, error) {
	client, err := redis.Connect(ctx, cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("%w: redis: %w", ErrInvalidConfig, err)
	}
	return NewRedisProviderWithClient(client, cfg), nil
}

// NewRedisProviderWithClient wraps an existing client. Close closes it.
func NewRedisProviderWithClient(client goredis.UniversalClient, cfg RedisConfig) *RedisProvider {
	if cfg.Group == "" {
		cfg.Group = "basepack"
	}
	return &RedisProvider{
		db:       client,
		cfg:      cfg,
		consumer: uuid.NewString(),
		groups:   make(map[string]bool),
	}
}

func (p *RedisProvider) Name() string { return string(ProviderRedis) }

func (p *RedisProvider) streamKey(queue string) string  { return p.cfg.KeyPrefix + queue }
func (p *RedisProvider) delayedKey(queue string) string { return p.cfg.KeyPrefix + queue + ":delayed" }

// Send appends msg to the queue stream, or parks it in the delayed set.
func (p *RedisProvider) Send(ctx context.Context, queue string, msg Message) (string, error) {
	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}

	if msg.Delay > 0 {
		raw, err := json.Marshal(delayedEntry{ID: id, Body: msg.Body, Attrs: msg.Attributes})
		if err != nil {
			return "", err
		}
		due := time.Now().Add(msg.Delay).UnixMilli()
		if err := p.db.ZAdd(ctx, p.delayedKey(queue), goredis.Z{Score: float64(due), Member: raw}).Err(); err != nil {
			return "", err
		}
		return id, nil
	}

	if err := p.add(ctx, p.db, queue, id, msg.Body, msg.Attributes); err != nil {
		return "", err
	}
	return id, nil
}

func (p *RedisProvider) add(ctx context.Context, c goredis.Cmdable, queue, id string, body []byte, attrs map[string]string) error {
	values := map[string]any{fieldID: id, fieldBody: body}
	if len(attrs) > 0 {
		raw, err := json.Marshal(attrs)
		if err != nil {
			return err
		}
		values[fieldAttrs] = raw
	}
	args := &goredis.XAddArgs{Stream: p.streamKey(queue), Values: values}
	if p.cfg.MaxLen > 0 {
		args.MaxLen = p.cfg.MaxLen
		args.Approx = true
	}
	return c.XAdd(ctx, args).Err()
}

// Receive first reclaims messages whose visibility timeout expired, then
// reads new ones.
func (p *RedisProvider) Receive(ctx context.Context, queue string, opts ReceiveOptions) ([]Received, error) {
	opts = opts.normalized()
	if err := p.ensureGroup(ctx, queue); err != nil {
		return nil, err
	}
	if err := p.promoteDelayed(ctx, queue); err != nil {
		return nil, err
	}

	stream := p.streamKey(queue)
	claimed, _, err := p.db.XAutoClaim(ctx, &goredis.XAutoClaimArgs{
		Stream:   stream,
		Group:    p.cfg.Group,
		Consumer: p.consumer,
		MinIdle:  opts.VisibilityTimeout,
		Start:    "0-0",
		Count:    int64(opts.MaxMessages),
	}).Result()
	if err != nil {
		return nil, err
	}

	msgs := claimed
	if remaining := opts.MaxMessages - len(claimed); remaining > 0 {
		block := time.Duration(-1)
		if len(claimed) == 0 && opts.WaitTime > 0 {
			block = opts.WaitTime
		}
		streams, err := p.db.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    p.cfg.Group,
			Consumer: p.consumer,
			Streams:  []string{stream, ">"},
			Count:    int64(remaining),
			Block:    block,
		}).Result()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return nil, err
		}
		for _, s := range streams {
			msgs = append(msgs, s.Messages...)
		}
	}

	out := make([]Received, 0, len(msgs))
	for _, m := range msgs {
		r, err := p.decode(ctx, stream, m)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (p *RedisProvider) decode(ctx context.Context, stream string, m goredis.XMessage) (Received, error) {
	r := Received{Receipt: m.ID, ReceiveCount: 1}
	if v, ok := m.Values[fieldID].(string); ok {
		r.ID = v
	}
	if v, ok := m.Values[fieldBody].(string); ok {
		r.Body = []byte(v)
	}
	if v, ok := m.Values[fieldAttrs].(string); ok && v != "" {
		if err := json.Unmarshal([]byte(v), &r.Attributes); err != nil {
			return r, fmt.Errorf("queue: decode attributes of %s: %w", m.ID, err)
		}
	}

	pending, err := p.db.XPendingExt(ctx, &goredis.XPendingExtArgs{
		Stream: stream,
		Group:  p.cfg.Group,
		Start:  m.ID,
		End:    m.ID,
		Count:  1,
	}).Result()
	if err != nil {
		return r, err
	}
	if len(pending) == 1 && pending[0].RetryCount > 0 {
		r.ReceiveCount = int(pending[0].RetryCount)
	}
	return r, nil
}

// Ack acknowledges the entry and removes it from the stream.
func (p *RedisProvider) Ack(ctx context.Context, queue, receipt string) error {
	stream := p.streamKey(queue)
	n, err := p.db.XAck(ctx, stream, p.cfg.Group, receipt).Result()
	if err != nil {
		if strings.Contains(err.Error(), "Invalid stream ID") {
			return ErrReceiptNotFound
		}
		return err
	}
	if n == 0 {
		return ErrReceiptNotFound
	}
	return p.db.XDel(ctx, stream, receipt).Err()
}

func (p *RedisProvider) ensureGroup(ctx context.Context, queue string) error {
	p.groupsMu.Lock()
	defer p.groupsMu.Unlock()

	if p.groups[queue] {
		return nil
	}
	err := p.db.XGroupCreateMkStream(ctx, p.streamKey(queue), p.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	p.groups[queue] = true
	return nil
}

// promoteDelayed moves due messages into the stream. ZREM decides which
// receiver moves an entry when several race.
func (p *RedisProvider) promoteDelayed(ctx context.Context, queue string) error {
	key := p.delayedKey(queue)
	due, err := p.db.ZRangeByScore(ctx, key, &goredis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(time.Now().UnixMilli(), 10),
		Count: promoteBatch,
	}).Result()
	if err != nil {
		return err
	}

	for _, raw := range due {
		removed, err := p.db.ZRem(ctx, key, raw).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			continue
		}
		var e delayedEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return fmt.Errorf("queue: decode delayed message: %w", err)
		}
		if err := p.add(ctx, p.db, queue, e.ID, e.Body, e.Attrs); err != nil {
			return err
		}
	}
	return nil
}

// Health pings the server.
func (p *RedisProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	if err := redis.Healthcheck(p.db)(ctx); err != nil {
		return failover.HealthInfo{}, err
	}
	return failover.HealthInfo{OK: true, Message: "PONG", Details: map[string]any{"group": p.cfg.Group}}, nil
}

// Close closes the client.
func (p *RedisProvider) Close() error {
	return p.db.Close()
}
