package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/praveentcom/basepack-sub001/pkg/messaging"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

func ptr[T any](v T) *T { return &v }

var twilioCfg = messaging.TwilioConfig{
	AccountSID:   "AC123",
	AuthToken:    "secret",
	From:         "+15005550006",
	WhatsAppFrom: "+14155238886",
}

func TestTwilioProvider_Send(t *testing.T) {
	t.Parallel()

	client := &MockTwilioClient{}
	client.On("CreateMessage", mock.MatchedBy(func(p *twilioApi.CreateMessageParams) bool {
		return *p.To == "+14155550100" && *p.From == "+15005550006" && *p.Body == "code 1"
	})).Return(&twilioApi.ApiV2010Message{Sid: ptr("SM1")}, nil).Once()
	client.On("CreateMessage", mock.MatchedBy(func(p *twilioApi.CreateMessageParams) bool {
		return *p.To == "whatsapp:+447700900123" && *p.From == "whatsapp:+14155238886" && len(*p.MediaUrl) == 1
	})).Return(&twilioApi.ApiV2010Message{Sid: ptr("SM2")}, nil).Once()
	client.On("CreateMessage", mock.MatchedBy(func(p *twilioApi.CreateMessageParams) bool {
		return *p.To == "+15005550001"
	})).Return(nil, &twilioclient.TwilioRestError{Code: 21211, Status: 400, Message: "The 'To' number is not a valid phone number."}).Once()

	p := messaging.NewTwilioProviderWithClient(client, twilioCfg)
	assert.Equal(t, "twilio", p.Name())

	results, err := p.Send(context.Background(), []messaging.Message{
		{To: "+14155550100", Body: "code 1"},
		{To: "+447700900123", Body: "photo", Channel: messaging.ChannelWhatsApp, MediaURLs: []string{"https://acme.io/a.png"}},
		{To: "+15005550001", Body: "code 3"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "SM1", results[0].MessageID)
	assert.Equal(t, "SM2", results[1].MessageID)
	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, messaging.ErrRecipientUnreachable.Error())
	assert.Contains(t, results[2].Error, "21211")
	client.AssertExpectations(t)
}

func TestTwilioProvider_Send_MessagingService(t *testing.T) {
	t.Parallel()

	cfg := twilioCfg
	cfg.MessagingServiceSID = "MG42"

	client := &MockTwilioClient{}
	client.On("CreateMessage", mock.MatchedBy(func(p *twilioApi.CreateMessageParams) bool {
		return p.From == nil && *p.MessagingServiceSid == "MG42"
	})).Return(&twilioApi.ApiV2010Message{Sid: ptr("SM9")}, nil).Once()

	results, err := messaging.NewTwilioProviderWithClient(client, cfg).
		Send(context.Background(), []messaging.Message{{To: "+14155550100", Body: "hi"}})
	require.NoError(t, err)
	assert.True(t, results[0].Success)
}

func TestTwilioProvider_Send_RateLimitedIsThrown(t *testing.T) {
	t.Parallel()

	client := &MockTwilioClient{}
	client.On("CreateMessage", mock.Anything).
		Return(nil, &twilioclient.TwilioRestError{Code: 20429, Status: 429, Message: "Too Many Requests"})

	results, err := messaging.NewTwilioProviderWithClient(client, twilioCfg).
		Send(context.Background(), []messaging.Message{{To: "+14155550100", Body: "hi"}})
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, retry.IsRetryable(err))
}

func TestTwilioProvider_Health(t *testing.T) {
	t.Parallel()

	t.Run("active", func(t *testing.T) {
		t.Parallel()
		client := &MockTwilioClient{}
		client.On("FetchAccount", "AC123").Return(&twilioApi.ApiV2010Account{Status: ptr("active")}, nil).Once()

		info, err := messaging.NewTwilioProviderWithClient(client, twilioCfg).Health(context.Background())
		require.NoError(t, err)
		assert.True(t, info.OK)
	})

	t.Run("suspended", func(t *testing.T) {
		t.Parallel()
		client := &MockTwilioClient{}
		client.On("FetchAccount", "AC123").Return(&twilioApi.ApiV2010Account{Status: ptr("suspended")}, nil).Once()

		info, err := messaging.NewTwilioProviderWithClient(client, twilioCfg).Health(context.Background())
		require.NoError(t, err)
		assert.False(t, info.OK)
	})

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()
		client := &MockTwilioClient{}
		client.On("FetchAccount", "AC123").Return(nil, errors.New("authenticate")).Once()

		_, err := messaging.NewTwilioProviderWithClient(client, twilioCfg).Health(context.Background())
		require.Error(t, err)
	})
}

func TestNewTwilioProvider_Config(t *testing.T) {
	t.Parallel()

	_, err := messaging.NewTwilioProvider(messaging.TwilioConfig{From: "+15005550006"})
	require.ErrorIs(t, err, messaging.ErrInvalidConfig)

	_, err = messaging.NewTwilioProvider(messaging.TwilioConfig{AccountSID: "AC1", AuthToken: "x"})
	require.ErrorIs(t, err, messaging.ErrInvalidConfig)

	p, err := messaging.NewTwilioProvider(twilioCfg)
	require.NoError(t, err)
	assert.Equal(t, "twilio", p.Name())
}
