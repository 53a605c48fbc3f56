package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/config"
	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/queue"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

var fastRetry = retry.Options{Retries: 2, MinTimeout: time.Millisecond, MaxTimeout: time.Millisecond, Factor: 2}

func TestService_Send_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	msg := queue.Message{Body: []byte("x")}
	p := &MockProvider{}
	p.On("Send", mock.Anything, "jobs", msg).
		Return("", failover.NewProviderError("mock", 503, true, errors.New("unavailable"))).Twice()
	p.On("Send", mock.Anything, "jobs", msg).Return("id-1", nil).Once()

	svc := queue.NewServiceWithProvider(p, queue.WithRetry(fastRetry))
	id, err := svc.Send(context.Background(), "jobs", msg)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
	p.AssertExpectations(t)
}

func TestService_Send_PermanentFailureIsNotRetried(t *testing.T) {
	t.Parallel()

	msg := queue.Message{Body: []byte("x")}
	p := &MockProvider{}
	p.On("Send", mock.Anything, "jobs", msg).
		Return("", failover.NewProviderError("mock", 400, false, errors.New("bad request"))).Once()

	svc := queue.NewServiceWithProvider(p, queue.WithRetry(fastRetry))
	_, err := svc.Send(context.Background(), "jobs", msg)
	require.Error(t, err)
	p.AssertExpectations(t)
}

func TestService_Send_Validation(t *testing.T) {
	t.Parallel()

	svc := queue.NewServiceWithProvider(&MockProvider{})
	_, err := svc.Send(context.Background(), "", queue.Message{Body: []byte("x")})
	require.ErrorIs(t, err, queue.ErrEmptyQueueName)
	_, err = svc.Send(context.Background(), "jobs", queue.Message{})
	require.ErrorIs(t, err, queue.ErrEmptyBody)
	_, err = svc.Receive(context.Background(), "", queue.ReceiveOptions{})
	require.ErrorIs(t, err, queue.ErrEmptyQueueName)
	require.ErrorIs(t, svc.Ack(context.Background(), "", "r"), queue.ErrEmptyQueueName)
}

func TestService_SendJSON(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := queue.NewMemoryProvider(queue.MemoryConfig{})
	svc := queue.NewServiceWithProvider(mem)
	defer svc.Close()

	_, err := svc.SendJSON(ctx, "signups", map[string]string{"email": "a@example.com"}, map[string]string{"tenant": "acme"})
	require.NoError(t, err)

	msgs, err := svc.Receive(ctx, "signups", queue.ReceiveOptions{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "application/json", msgs[0].Attributes[queue.AttrContentType])
	assert.Equal(t, "acme", msgs[0].Attributes["tenant"])

	var payload map[string]string
	require.NoError(t, json.Unmarshal(msgs[0].Body, &payload))
	assert.Equal(t, "a@example.com", payload["email"])
	require.NoError(t, svc.Ack(ctx, "signups", msgs[0].Receipt))

	_, err = svc.SendJSON(ctx, "signups", make(chan int), nil)
	require.ErrorIs(t, err, queue.ErrPayloadMarshal)
}

func TestService_Health(t *testing.T) {
	t.Parallel()

	p := &MockProvider{}
	p.On("Health", mock.Anything).Return(failover.HealthInfo{}, errors.New("down")).Once()

	svc := queue.NewServiceWithProvider(p)
	report := svc.Health(context.Background())
	require.Contains(t, report, "mock")
	assert.False(t, report["mock"].OK)
	assert.Equal(t, "down", report["mock"].Message)
}

func TestNewService(t *testing.T) {
	t.Parallel()

	svc, err := queue.NewService(context.Background(), queue.ServiceConfig{Provider: queue.ProviderConfig{Name: queue.ProviderMemory}})
	require.NoError(t, err)
	assert.Equal(t, "memory", svc.Provider().Name())
	require.NoError(t, svc.Close())

	_, err = queue.NewService(context.Background(), queue.ServiceConfig{Provider: queue.ProviderConfig{Name: "rabbitmq"}})
	require.ErrorIs(t, err, queue.ErrUnknownProvider)

	assert.Subset(t, queue.Providers(), []string{"kafka", "memory", "nats", "redis", "sqs"})
}

func TestConfig_ServiceConfig(t *testing.T) {
	t.Setenv("QUEUE_PROVIDER", " Redis ")
	t.Setenv("QUEUE_RETRIES", "5")
	t.Setenv("QUEUE_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("QUEUE_REDIS_GROUP", "mailers")
	t.Setenv("QUEUE_SQS_QUEUE_URLS", "jobs=https://sqs/123/jobs")
	t.Setenv("QUEUE_KAFKA_BROKERS", "k1:9092,k2:9092")

	var cfg queue.Config
	require.NoError(t, config.Load(&cfg))

	sc := cfg.ServiceConfig()
	assert.Equal(t, queue.ProviderRedis, sc.Provider.Name)
	assert.Equal(t, 5, sc.Retry.Retries)
	assert.Equal(t, "redis://cache:6379/2", sc.Provider.Redis.URL)
	assert.Equal(t, "mailers", sc.Provider.Redis.Group)
	assert.Equal(t, "queue:", sc.Provider.Redis.KeyPrefix)
	assert.Equal(t, map[string]string{"jobs": "https://sqs/123/jobs"}, sc.Provider.SQS.QueueURLs)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, sc.Provider.Kafka.Brokers)
	assert.Equal(t, "nats://localhost:4222", sc.Provider.NATS.URL)
}

func TestNewService_DefaultRetryBudget(t *testing.T) {
	t.Parallel()

	msg := queue.Message{Body: []byte("x")}
	p := &MockProvider{}
	p.On("Send", mock.Anything, "jobs", msg).Return("", errors.New("request timeout")).Once()
	p.On("Send", mock.Anything, "jobs", msg).Return("id-1", nil).Once()
	queue.Register("flaky-broker", func(context.Context, queue.ProviderConfig) (queue.Provider, error) {
		return p, nil
	})

	svc, err := queue.NewService(context.Background(), queue.ServiceConfig{Provider: queue.ProviderConfig{Name: "flaky-broker"}})
	require.NoError(t, err)

	id, err := svc.Send(context.Background(), "jobs", msg)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
	p.AssertNumberOfCalls(t, "Send", 2)
}
