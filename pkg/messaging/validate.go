package messaging

import (
	"fmt"

	"github.com/praveentcom/basepack-sub001/pkg/validator"
)

// Validate checks a message before it is handed to a provider.
func Validate(m Message) error {
	return validator.Apply(
		validator.Required("to", m.To),
		validator.Optional(m.To, validator.ValidPhone("to", m.To)),
		validator.Optional(m.From, validator.MaxLen("from", m.From, 32)),
		validator.Required("body", m.Body),
		validator.MaxLen("body", m.Body, MaxBodyLength),
		validator.OneOf("channel", m.Channel, ChannelSMS, ChannelWhatsApp),
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
