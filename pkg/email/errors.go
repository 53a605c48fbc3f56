package email

import "errors"

var (
	ErrInvalidConfig     = errors.New("email: invalid provider config")
	ErrInvalidSendConfig = errors.New("email: exactly one of Message or Messages must be set")
	ErrFailedToSendEmail = errors.New("email: failed to send email")
)
