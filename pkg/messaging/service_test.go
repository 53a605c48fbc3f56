package messaging_test

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
	"github.com/praveentcom/basepack-sub001/pkg/messaging"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
	"github.com/praveentcom/basepack-sub001/pkg/validator"
)

func TestService_Send_FailsOverWhenPrimaryIsDown(t *testing.T) {
	t.Parallel()

	msg := messaging.Message{To: "+14155550100", Body: "code 123456"}

	primary := &MockProvider{name: "twilio"}
	primary.On("Send", mock.Anything, []messaging.Message{msg}).
		Return(nil, failover.NewProviderError("twilio", 503, true, errors.New("service unavailable"))).Times(2)

	backup := &MockProvider{name: "sns"}
	backup.On("Send", mock.Anything, []messaging.Message{msg}).
		Return([]messaging.Result{failover.Succeeded("sns", "sns-1")}, nil).Once()

	svc, err := messaging.NewServiceWithProviders(primary, []messaging.Provider{backup},
		messaging.WithRetry(retry.Options{Retries: 1, MinTimeout: time.Millisecond, MaxTimeout: time.Millisecond, Factor: 2}))
	require.NoError(t, err)

	results, err := svc.Send(context.Background(), messaging.SendConfig{Message: &msg})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "sns", results[0].Provider)
	assert.Equal(t, "sns-1", results[0].MessageID)
	primary.AssertExpectations(t)
	backup.AssertExpectations(t)
}

func TestService_Send_AllProvidersFail(t *testing.T) {
	t.Parallel()

	msg := messaging.Message{To: "+14155550100", Body: "hi"}
	primary := &MockProvider{name: "twilio"}
	primary.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("invalid credentials"))
	backup := &MockProvider{name: "sns"}
	backup.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	svc, err := messaging.NewServiceWithProviders(primary, []messaging.Provider{backup})
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), messaging.SendConfig{Messages: []messaging.Message{msg}})
	var agg *failover.AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Equal(t, []string{"twilio", "sns"}, agg.Providers())
	primary.AssertNumberOfCalls(t, "Send", 1)
}

func TestService_Send_Validation(t *testing.T) {
	t.Parallel()

	svc, err := messaging.NewServiceWithProviders(&MockProvider{name: "twilio"}, nil)
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), messaging.SendConfig{
		Messages: []messaging.Message{{To: "+14155550100", Body: "ok"}, {To: "555", Body: "bad"}},
	})
	require.ErrorIs(t, err, validator.ErrValidationFailed)
	assert.True(t, validator.ExtractValidationErrors(err).Has("messages[1].to"))

	_, err = svc.Send(context.Background(), messaging.SendConfig{
		Message:  &messaging.Message{},
		Messages: []messaging.Message{{}},
	})
	require.ErrorIs(t, err, messaging.ErrInvalidSendConfig)

	results, err := svc.Send(context.Background(), messaging.SendConfig{Messages: []messaging.Message{}})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNewService_FromConfig(t *testing.T) {
	t.Parallel()

	svc, err := messaging.NewService(context.Background(), messaging.ServiceConfig{
		Primary:        messaging.ProviderConfig{Name: messaging.ProviderTwilio, Twilio: twilioCfg},
		Backups:        []messaging.ProviderConfig{{Name: "carrier-pigeon"}},
		LenientBackups: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "twilio", svc.Primary().Name())
	assert.Empty(t, svc.Backups())

	_, err = messaging.NewService(context.Background(), messaging.ServiceConfig{
		Primary: messaging.ProviderConfig{Name: messaging.ProviderTwilio, Twilio: twilioCfg},
		Backups: []messaging.ProviderConfig{{Name: "carrier-pigeon"}},
	})
	require.ErrorIs(t, err, failover.ErrUnknownProvider)
}

func TestConfig_ServiceConfig(t *testing.T) {
	t.Setenv("MESSAGING_PROVIDER", "Twilio")
	t.Setenv("MESSAGING_BACKUP_PROVIDERS", "sns, ")
	t.Setenv("MESSAGING_TWILIO_ACCOUNT_SID", "AC1")
	t.Setenv("MESSAGING_SNS_REGION", "eu-west-1")

	var cfg messaging.Config
	require.NoError(t, config.Load(&cfg))

	sc := cfg.ServiceConfig()
	assert.Equal(t, messaging.ProviderTwilio, sc.Primary.Name)
	assert.Equal(t, "AC1", sc.Primary.Twilio.AccountSID)
	require.Len(t, sc.Backups, 1)
	assert.Equal(t, messaging.ProviderSNS, sc.Backups[0].Name)
	assert.Equal(t, "eu-west-1", sc.Backups[0].SNS.Region)
	assert.Equal(t, "Transactional", sc.Backups[0].SNS.SMSType)
}

func TestNewService_DefaultRetryBudget(t *testing.T) {
	t.Parallel()

	flaky := &MockProvider{name: "flaky-sms"}
	flaky.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("request timeout")).Once()
	flaky.On("Send", mock.Anything, mock.Anything).Return([]messaging.Result{failover.Succeeded("flaky-sms", "sms-1")}, nil).Once()
	messaging.Register("flaky-sms", func(context.Context, messaging.ProviderConfig) (messaging.Provider, error) {
		return flaky, nil
	})

	svc, err := messaging.NewService(context.Background(), messaging.ServiceConfig{
		Primary: messaging.ProviderConfig{Name: "flaky-sms"},
	})
	require.NoError(t, err)

	msg := messaging.Message{To: "+14155550100", Body: "code 123456"}
	results, err := svc.Send(context.Background(), messaging.SendConfig{Message: &msg})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	flaky.AssertNumberOfCalls(t, "Send", 2)
}
