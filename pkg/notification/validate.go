package notification

import (
	"encoding/json"
	"fmt"

	"github.com/praveentcom/basepack-sub001/pkg/validator"
)

// payloadSize approximates the size of the payload a gateway receives.
func payloadSize(m Message) int {
	b, err := json.Marshal(struct {
		Title    string            `json:"title,omitempty"`
		Body     string            `json:"body,omitempty"`
		Data     map[string]string `json:"data,omitempty"`
		ImageURL string            `json:"image,omitempty"`
		Sound    string            `json:"sound,omitempty"`
		Badge    *int              `json:"badge,omitempty"`
		Click    string            `json:"click_action,omitempty"`
	}{m.Title, m.Body, m.Data, m.ImageURL, m.Sound, m.Badge, m.ClickAction})
	if err != nil {
		return MaxPayloadBytes + 1
	}
	return len(b)
}

// Validate checks a message before it is handed to a provider.
func Validate(m Message) error {
	return validator.Apply(
		validator.ExactlyOne("target", m.Token, m.Topic),
		validator.Rule{
			Check: func() bool { return m.Title != "" || m.Body != "" || len(m.Data) > 0 },
			Error: validator.ValidationError{Field: "content", Message: "title, body or data is required"},
		},
		validator.OneOf("priority", m.Priority, PriorityNormal, PriorityHigh),
		validator.Rule{
			Check: func() bool { return m.Badge == nil || *m.Badge >= 0 },
			Error: validator.ValidationError{Field: "badge", Message: "must not be negative"},
		},
		validator.Rule{
			Check: func() bool { return m.TTL >= 0 },
			Error: validator.ValidationError{Field: "ttl", Message: "must not be negative"},
		},
		validator.MaxBytes("payload", payloadSize(m), MaxPayloadBytes),
	)
}

func (c SendConfig) normalize() ([]Message, error) {
	switch {
	case c.Message != nil && c.Messages != nil:
		return nil, ErrInvalidSendConfig
	case c.Message != nil:
		return []Message{*c.Message}, nil
	case c.Messages != nil:
		return c.Messages, nil
	default:
		return nil, ErrInvalidSendConfig
	}
}

func validateAll(messages []Message) error {
	for i, m := range messages {
		if err := Validate(m); err != nil {
			return validator.WithPrefix(fmt.Sprintf("messages[%d]", i), err)
		}
	}
	return nil
}
