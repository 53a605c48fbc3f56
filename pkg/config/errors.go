package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables or a config file cannot be decoded.
	ErrParsingConfig = errors.New("failed to parse config")

	// ErrReadingFile is returned when a config file cannot be opened.
	ErrReadingFile = errors.New("failed to read config file")

	// ErrNilPointer is returned when a nil pointer is provided to a loader.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)
