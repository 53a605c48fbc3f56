package messaging

import "errors"

var (
	ErrInvalidConfig        = errors.New("messaging: invalid provider config")
	ErrInvalidSendConfig    = errors.New("messaging: exactly one of Message or Messages must be set")
	ErrChannelNotSupported  = errors.New("messaging: channel not supported by provider")
	ErrMediaNotSupported    = errors.New("messaging: media not supported by provider")
	ErrRecipientUnreachable = errors.New("messaging: recipient cannot receive messages")
)
