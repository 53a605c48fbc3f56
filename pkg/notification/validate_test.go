package notification_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/notification"
	"github.com/praveentcom/basepack-sub001/pkg/validator"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	negative := -1
	tests := []struct {
		name      string
		msg       notification.Message
		wantField string
	}{
		{name: "token with title", msg: notification.Message{Token: "tok", Title: "hi"}},
		{name: "topic with data only", msg: notification.Message{Topic: "news", Data: map[string]string{"k": "v"}}},
		{name: "high priority", msg: notification.Message{Token: "tok", Body: "b", Priority: notification.PriorityHigh}},
		{name: "no target", msg: notification.Message{Title: "hi"}, wantField: "target"},
		{name: "both targets", msg: notification.Message{Token: "tok", Topic: "news", Title: "hi"}, wantField: "target"},
		{name: "no content", msg: notification.Message{Token: "tok"}, wantField: "content"},
		{name: "unknown priority", msg: notification.Message{Token: "tok", Title: "hi", Priority: "urgent"}, wantField: "priority"},
		{name: "negative badge", msg: notification.Message{Token: "tok", Title: "hi", Badge: &negative}, wantField: "badge"},
		{name: "negative ttl", msg: notification.Message{Token: "tok", Title: "hi", TTL: -1}, wantField: "ttl"},
		{name: "payload too large", msg: notification.Message{Token: "tok", Body: strings.Repeat("x", 5000)}, wantField: "payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := notification.Validate(tt.msg)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, validator.ErrValidationFailed)
			assert.True(t, validator.ExtractValidationErrors(err).Has(tt.wantField))
		})
	}
}
