package notification

import "errors"

var (
	ErrInvalidConfig     = errors.New("notification: invalid provider config")
	ErrInvalidSendConfig = errors.New("notification: exactly one of Message or Messages must be set")
	ErrTopicNotSupported = errors.New("notification: provider does not support topics")
	ErrInvalidToken      = errors.New("notification: invalid device token")
)
