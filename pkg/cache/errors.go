package cache

import "errors"

var (
	ErrNotFound        = errors.New("cache: key not found")
	ErrInvalidConfig   = errors.New("cache: invalid provider config")
	ErrUnknownProvider = errors.New("cache: unknown provider")
	ErrEmptyKey        = errors.New("cache: key must not be empty")
	ErrUnsupported     = errors.New("cache: operation not supported by provider")
)
