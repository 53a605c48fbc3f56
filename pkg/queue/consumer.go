package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/logger"
)

var (
	ErrConsumerStarted    = errors.New("queue: consumer already started")
	ErrConsumerNotStarted = errors.New("queue: consumer not started")
)

// Consumer polls one queue and dispatches messages to a Handler with
// bounded concurrency.
type Consumer struct {
	svc     *Service
	queue   string
	handler Handler
	opts    consumerOptions
	logger  *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewConsumer creates a consumer for queue. Call Start or Run to begin.
func NewConsumer(svc *Service, queue string, handler Handler, opts ...ConsumerOption) (*Consumer, error) {
	if queue == "" {
		return nil, ErrEmptyQueueName
	}
	if handler == nil {
		return nil, ErrNoHandler
	}

	o := consumerOptions{
		pollInterval:      time.Second,
		visibilityTimeout: defaultVisibilityTimeout,
		batchSize:         maxReceiveBatch,
		maxConcurrent:     1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Consumer{
		svc:     svc,
		queue:   queue,
		handler: handler,
		opts:    o,
		logger:  logger.OrNop(o.logger).With(logger.Component("consumer"), logger.Queue(queue)),
		sem:     make(chan struct{}, o.maxConcurrent),
	}, nil
}

// Start begins polling in the background.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return ErrConsumerStarted
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})

	go c.run(ctx)

	c.logger.InfoContext(ctx, "consumer started", slog.Int("max_concurrent", cap(c.sem)))
	return nil
}

// Stop cancels polling and waits for in-flight handlers to finish.
func (c *Consumer) Stop() error {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return ErrConsumerNotStarted
	}
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	<-done
	c.wg.Wait()

	c.logger.Info("consumer stopped")
	return nil
}

// Run starts the consumer and returns a function suitable for errgroup.
// The function blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) func() error {
	return func() error {
		if err := c.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return c.Stop()
	}
}

func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)

	for {
		if ctx.Err() != nil {
			return
		}

		free := cap(c.sem) - len(c.sem)
		if free == 0 {
			if !c.sleep(ctx) {
				return
			}
			continue
		}

		msgs, err := c.svc.Receive(ctx, c.queue, ReceiveOptions{
			MaxMessages:       min(free, c.opts.batchSize),
			VisibilityTimeout: c.opts.visibilityTimeout,
			WaitTime:          c.opts.waitTime,
		})
		if err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "failed to receive messages", logger.Error(err))
		}
		if len(msgs) == 0 {
			if !c.sleep(ctx) {
				return
			}
			continue
		}

		for _, m := range msgs {
			c.sem <- struct{}{}
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				defer func() { <-c.sem }()
				c.process(ctx, m)
			}()
		}
	}
}

func (c *Consumer) sleep(ctx context.Context) bool {
	t := time.NewTimer(c.opts.pollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// process runs the handler with a deadline of one visibility timeout. The
// handler context survives consumer shutdown so in-flight work can finish.
func (c *Consumer) process(ctx context.Context, m Received) {
	start := time.Now()
	log := c.logger.With(logger.MessageID(m.ID), slog.Int("receive_count", m.ReceiveCount))

	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.visibilityTimeout)
	defer cancel()

	if err := c.handle(hctx, m); err != nil {
		log.WarnContext(ctx, "message handler failed", logger.Duration(time.Since(start)), logger.Error(err))
		return
	}
	if err := c.svc.Ack(hctx, c.queue, m.Receipt); err != nil {
		log.ErrorContext(ctx, "failed to ack message", logger.Error(err))
		return
	}
	log.DebugContext(ctx, "message processed", logger.Duration(time.Since(start)))
}

func (c *Consumer) handle(ctx context.Context, m Received) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in handler: %v", r)
		}
	}()
	return c.handler.Handle(ctx, m)
}
