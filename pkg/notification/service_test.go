package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/config"
	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/notification"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
	"github.com/praveentcom/basepack-sub001/pkg/validator"
)

func fastRetry() notification.Option {
	return notification.WithRetry(retry.Options{Retries: 1, MinTimeout: time.Millisecond, MaxTimeout: time.Millisecond, Factor: 2})
}

func TestService_Send_PartialFailover(t *testing.T) {
	t.Parallel()

	msgs := []notification.Message{
		{Token: "device-a", Title: "hi"},
		{Token: "device-b", Title: "hi"},
	}

	primary := &MockProvider{name: "fcm"}
	primary.On("Send", mock.Anything, msgs).Return([]notification.Result{
		failover.Succeeded("fcm", "projects/demo/messages/1"),
		failover.Failed("fcm", errors.New("internal error")),
	}, nil).Once()

	backup := &MockProvider{name: "apns"}
	backup.On("Send", mock.Anything, msgs[1:]).Return([]notification.Result{
		failover.Succeeded("apns", "apns-2"),
	}, nil).Once()

	svc, err := notification.NewServiceWithProviders(primary, []notification.Provider{backup}, fastRetry())
	require.NoError(t, err)

	results, err := svc.Send(context.Background(), notification.SendConfig{Messages: msgs})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "fcm", results[0].Provider)
	assert.Equal(t, "projects/demo/messages/1", results[0].MessageID)
	assert.Equal(t, "apns", results[1].Provider)
	assert.True(t, results[1].Success)

	primary.AssertExpectations(t)
	backup.AssertExpectations(t)
}

func TestService_Send_Validation(t *testing.T) {
	t.Parallel()

	primary := &MockProvider{name: "fcm"}
	svc, err := notification.NewServiceWithProviders(primary, nil)
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), notification.SendConfig{Message: &notification.Message{Title: "no target"}})
	require.ErrorIs(t, err, validator.ErrValidationFailed)
	primary.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

	_, err = svc.Send(context.Background(), notification.SendConfig{})
	require.ErrorIs(t, err, notification.ErrInvalidSendConfig)

	results, err := svc.Send(context.Background(), notification.SendConfig{Messages: []notification.Message{}})
	require.NoError(t, err)
	assert.Empty(t, results)
	primary.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestService_Health(t *testing.T) {
	t.Parallel()

	svc, err := notification.NewServiceWithProviders(&MockProvider{name: "apns"}, nil)
	require.NoError(t, err)

	report := svc.Health(context.Background())
	assert.Equal(t, failover.HealthInfo{OK: true, Message: "health check not supported"}, report["apns"])
	assert.Equal(t, "apns", svc.Primary().Name())
	assert.Empty(t, svc.Backups())
	assert.Len(t, svc.Providers(), 1)
	assert.NoError(t, svc.Close())
}

func TestNewService_Errors(t *testing.T) {
	t.Parallel()

	_, err := notification.NewService(context.Background(), notification.ServiceConfig{
		Primary: notification.ProviderConfig{Name: notification.ProviderWebPush},
	})
	require.ErrorIs(t, err, notification.ErrInvalidConfig)

	_, err = notification.NewService(context.Background(), notification.ServiceConfig{
		Primary: notification.ProviderConfig{Name: "pager"},
	})
	require.ErrorIs(t, err, failover.ErrUnknownProvider)
}

func TestConfig_ServiceConfig(t *testing.T) {
	t.Setenv("NOTIFICATION_PROVIDER", "apns")
	t.Setenv("NOTIFICATION_BACKUP_PROVIDERS", "webpush")
	t.Setenv("NOTIFICATION_APNS_BUNDLE_ID", "io.acme.app")
	t.Setenv("NOTIFICATION_WEBPUSH_SUBSCRIBER", "mailto:ops@acme.io")

	var cfg notification.Config
	require.NoError(t, config.Load(&cfg))

	sc := cfg.ServiceConfig()
	assert.Equal(t, notification.ProviderAPNS, sc.Primary.Name)
	assert.Equal(t, "io.acme.app", sc.Primary.APNS.BundleID)
	require.Len(t, sc.Backups, 1)
	assert.Equal(t, notification.ProviderWebPush, sc.Backups[0].Name)
	assert.Equal(t, 24*time.Hour, sc.Backups[0].WebPush.TTL)
	assert.Equal(t, 3, sc.Retry.Retries)
}

func TestNewService_DefaultRetryBudget(t *testing.T) {
	t.Parallel()

	flaky := &MockProvider{name: "flaky-push"}
	flaky.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("request timeout")).Once()
	flaky.On("Send", mock.Anything, mock.Anything).Return([]notification.Result{failover.Succeeded("flaky-push", "push-1")}, nil).Once()
	notification.Register("flaky-push", func(context.Context, notification.ProviderConfig) (notification.Provider, error) {
		return flaky, nil
	})

	svc, err := notification.NewService(context.Background(), notification.ServiceConfig{
		Primary: notification.ProviderConfig{Name: "flaky-push"},
	})
	require.NoError(t, err)

	msg := notification.Message{Token: "device-a", Title: "hi"}
	results, err := svc.Send(context.Background(), notification.SendConfig{Message: &msg})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	flaky.AssertNumberOfCalls(t, "Send", 2)
}
