package email

import (
	"fmt"

	"github.com/praveentcom/basepack-sub001/pkg/validator"
)

// Validate checks a message before it is handed to a provider.
func Validate(m Message) error {
	return validator.Apply(
		validator.Required("from", m.From),
		validator.Optional(m.From, validator.ValidEmail("from", m.From)),
		validator.RequiredSlice("to", m.To),
		validator.ValidEmails("to", m.To),
		validator.ValidEmails("cc", m.CC),
		validator.ValidEmails("bcc", m.BCC),
		validator.Optional(m.ReplyTo, validator.ValidEmail("reply_to", m.ReplyTo)),
		validator.MaxCount("recipients", m.Recipients(), MaxRecipients),
		validator.Required("subject", m.Subject),
		validator.RequiredOneOf("body", m.Text, m.HTML),
	)
}

// normalize turns a SendConfig into an ordered batch.
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
