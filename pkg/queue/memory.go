package queue

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// memoryPollInterval is how often a long-polling Receive rechecks the queue.
const memoryPollInterval = 10 * time.Millisecond

type memoryEntry struct {
	id           string
	msg          Message
	availableAt  time.Time
	receipt      string
	lockedUntil  time.Time
	receiveCount int
}

// MemoryProvider is an in-process queue with visibility timeouts, intended
// for tests and local development. Messages are lost on Close.
type MemoryProvider struct {
	mu       sync.Mutex
	queues   map[string][]*memoryEntry
	receipts map[string]*memoryEntry

	now        func() time.Time
	lockTicker *time.Ticker
	done       chan struct{}
	closeOnce  sync.Once
}

func newMemoryFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewMemoryProvider(cfg.Memory), nil
}

// NewMemoryProvider starts the background reaper that releases messages
// whose visibility timeout expired.
func NewMemoryProvider(cfg MemoryConfig) *MemoryProvider {
	interval := cfg.ReapInterval
	if interval <= 0 {
		interval = time.Second
	}
	p := &MemoryProvider{
		queues:     make(map[string][]*memoryEntry),
		receipts:   make(map[string]*memoryEntry),
		now:        time.Now,
		lockTicker: time.NewTicker(interval),
		done:       make(chan struct{}),
	}
	go p.lockExpirationManager()
	return p
}

func (p *MemoryProvider) Name() string { return string(ProviderMemory) }

// Send enqueues msg, hidden until msg.Delay has passed.
func (p *MemoryProvider) Send(_ context.Context, queue string, msg Message) (string, error) {
	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.queues[queue] = append(p.queues[queue], &memoryEntry{
		id:          id,
		msg:         cloneMessage(msg, id),
		availableAt: p.now().Add(msg.Delay),
	})
	return id, nil
}

// Receive claims visible messages in send order. With a WaitTime it polls
// until a message arrives, the wait elapses or ctx is done.
func (p *MemoryProvider) Receive(ctx context.Context, queue string, opts ReceiveOptions) ([]Received, error) {
	opts = opts.normalized()
	deadline := p.now().Add(opts.WaitTime)

	for {
		if out := p.claim(queue, opts); len(out) > 0 || !p.now().Before(deadline) {
			return out, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.done:
			return nil, nil
		case <-time.After(memoryPollInterval):
		}
	}
}

func (p *MemoryProvider) claim(queue string, opts ReceiveOptions) []Received {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var out []Received
	for _, e := range p.queues[queue] {
		if len(out) == opts.MaxMessages {
			break
		}
		if e.availableAt.After(now) {
			continue
		}
		if e.receipt != "" {
			if e.lockedUntil.After(now) {
				continue
			}
			delete(p.receipts, e.receipt)
		}

		e.receipt = uuid.NewString()
		e.lockedUntil = now.Add(opts.VisibilityTimeout)
		e.receiveCount++
		p.receipts[e.receipt] = e

		out = append(out, Received{
			Message:      cloneMessage(e.msg, e.id),
			Receipt:      e.receipt,
			ReceiveCount: e.receiveCount,
		})
	}
	return out
}

// Ack deletes the message. Receipts of messages that were redelivered or
// already acknowledged return ErrReceiptNotFound.
func (p *MemoryProvider) Ack(_ context.Context, queue, receipt string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.receipts[receipt]
	if !ok {
		return ErrReceiptNotFound
	}
	delete(p.receipts, receipt)
	p.queues[queue] = slices.DeleteFunc(p.queues[queue], func(x *memoryEntry) bool { return x == e })
	return nil
}

// Len reports how many messages, visible or not, are held for queue.
func (p *MemoryProvider) Len(queue string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queues[queue])
}

// Health reports the queue and message counts.
func (p *MemoryProvider) Health(_ context.Context) (failover.HealthInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := 0
	for _, entries := range p.queues {
		total += len(entries)
	}
	return failover.HealthInfo{
		OK:      true,
		Message: "in-memory queue",
		Details: map[string]any{"queues": len(p.queues), "messages": total},
	}, nil
}

// Close stops the reaper. It is safe to call more than once.
func (p *MemoryProvider) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		p.lockTicker.Stop()
	})
	return nil
}

func (p *MemoryProvider) lockExpirationManager() {
	for {
		select {
		case <-p.lockTicker.C:
			p.expireLocks()
		case <-p.done:
			return
		}
	}
}

// expireLocks releases messages whose consumer did not ack in time so the
// next Receive can hand them out again.
func (p *MemoryProvider) expireLocks() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for receipt, e := range p.receipts {
		if !e.lockedUntil.After(now) {
			delete(p.receipts, receipt)
			e.receipt = ""
			e.lockedUntil = time.Time{}
		}
	}
}

func cloneMessage(m Message, id string) Message {
	out := Message{ID: id, Body: slices.Clone(m.Body)}
	if len(m.Attributes) > 0 {
		out.Attributes = make(map[string]string, len(m.Attributes))
		for k, v := range m.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}
