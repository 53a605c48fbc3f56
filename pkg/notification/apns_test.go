package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/notification"
)

func TestAPNSProvider_Send(t *testing.T) {
	t.Parallel()

	client := &MockAPNSClient{}
	client.On("PushWithContext", mock.Anything, mock.MatchedBy(func(n *apns2.Notification) bool {
		if n.DeviceToken != "good-token" {
			return false
		}
		raw, err := json.Marshal(n.Payload)
		if err != nil {
			return false
		}
		var body struct {
			Aps struct {
				Alert struct {
					Title string `json:"title"`
					Body  string `json:"body"`
				} `json:"alert"`
			} `json:"aps"`
			OrderID string `json:"order_id"`
		}
		return json.Unmarshal(raw, &body) == nil &&
			n.Topic == "io.acme.app" &&
			n.Priority == apns2.PriorityLow &&
			body.Aps.Alert.Title == "Shipped" &&
			body.OrderID == "42"
	})).Return(&apns2.Response{StatusCode: 200, ApnsID: "apns-id-1"}, nil).Once()
	client.On("PushWithContext", mock.Anything, mock.MatchedBy(func(n *apns2.Notification) bool {
		return n.DeviceToken == "stale-token"
	})).Return(&apns2.Response{StatusCode: 410, Reason: apns2.ReasonUnregistered}, nil).Once()

	p := notification.NewAPNSProviderWithClient(client, "io.acme.app")
	assert.Equal(t, "apns", p.Name())

	results, err := p.Send(context.Background(), []notification.Message{
		{Token: "good-token", Title: "Shipped", Body: "Your order is on the way", Priority: notification.PriorityNormal, Data: map[string]string{"order_id": "42"}},
		{Token: "stale-token", Title: "Shipped"},
		{Topic: "news", Title: "Weekly digest"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.Equal(t, "apns-id-1", results[0].MessageID)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, notification.ErrInvalidToken.Error())
	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, notification.ErrTopicNotSupported.Error())
	client.AssertExpectations(t)
}

func TestAPNSProvider_Send_ServiceUnavailable(t *testing.T) {
	t.Parallel()

	client := &MockAPNSClient{}
	client.On("PushWithContext", mock.Anything, mock.Anything).
		Return(&apns2.Response{StatusCode: 503, Reason: apns2.ReasonServiceUnavailable}, nil).Once()

	var pe interface{ StatusCode() int }
	_, err := notification.NewAPNSProviderWithClient(client, "io.acme.app").
		Send(context.Background(), []notification.Message{{Token: "t", Title: "x"}})
	require.Error(t, err)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 503, pe.StatusCode())
}

func TestNewAPNSProvider_Config(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  notification.APNSConfig
	}{
		{name: "missing bundle id", cfg: notification.APNSConfig{KeyID: "K"}},
		{name: "missing credentials", cfg: notification.APNSConfig{BundleID: "io.acme.app"}},
		{name: "token without team", cfg: notification.APNSConfig{BundleID: "io.acme.app", KeyID: "K", Key: "x"}},
		{name: "unparseable key", cfg: notification.APNSConfig{BundleID: "io.acme.app", KeyID: "K", TeamID: "T", Key: "not a pem"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := notification.NewAPNSProvider(tt.cfg)
			require.ErrorIs(t, err, notification.ErrInvalidConfig)
		})
	}
}
