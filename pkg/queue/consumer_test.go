package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/queue"
)

type signup struct {
	Email string `json:"email"`
}

func newMemoryService(t *testing.T) (*queue.Service, *queue.MemoryProvider) {
	t.Helper()
	mem := newMemoryProvider(t)
	return queue.NewServiceWithProvider(mem), mem
}

func TestConsumer_ProcessesAndAcks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mem := newMemoryService(t)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.SendJSON(ctx, "signups", signup{Email: email}, nil)
		require.NoError(t, err)
	}

	seen := make(chan string, 3)
	c, err := queue.NewConsumer(svc, "signups", queue.JSONHandler(func(_ context.Context, s signup) error {
		seen <- s.Email
		return nil
	}), queue.WithPollInterval(5*time.Millisecond), queue.WithMaxConcurrent(2))
	require.NoError(t, err)

	require.NoError(t, c.Start(ctx))
	require.ErrorIs(t, c.Start(ctx), queue.ErrConsumerStarted)

	got := map[string]bool{}
	for range 3 {
		select {
		case e := <-seen:
			got[e] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for messages")
		}
	}
	assert.Len(t, got, 3)

	require.Eventually(t, func() bool { return mem.Len("signups") == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Stop())
	require.ErrorIs(t, c.Stop(), queue.ErrConsumerNotStarted)
}

func TestConsumer_FailedMessagesAreRedelivered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mem := newMemoryService(t)
	_, err := svc.Send(ctx, "jobs", queue.Message{Body: []byte("flaky")})
	require.NoError(t, err)

	var attempts atomic.Int32
	handler := queue.HandlerFunc(func(_ context.Context, m queue.Received) error {
		switch attempts.Add(1) {
		case 1:
			return errors.New("temporary failure")
		case 2:
			panic("boom")
		}
		if m.ReceiveCount != 3 {
			return errors.New("unexpected receive count")
		}
		return nil
	})

	c, err := queue.NewConsumer(svc, "jobs", handler,
		queue.WithPollInterval(5*time.Millisecond),
		queue.WithVisibilityTimeout(20*time.Millisecond))
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx)() }()

	require.Eventually(t, func() bool { return mem.Len("jobs") == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), attempts.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestNewConsumer_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newMemoryService(t)
	_, err := queue.NewConsumer(svc, "", queue.HandlerFunc(func(context.Context, queue.Received) error { return nil }))
	require.ErrorIs(t, err, queue.ErrEmptyQueueName)
	_, err = queue.NewConsumer(svc, "jobs", nil)
	require.ErrorIs(t, err, queue.ErrNoHandler)
}

func TestJSONHandler_DecodeError(t *testing.T) {
	t.Parallel()

	h := queue.JSONHandler(func(context.Context, signup) error { return nil })
	err := h.Handle(context.Background(), queue.Received{Message: queue.Message{ID: "m", Body: []byte("{")}})
	require.Error(t, err)
}
