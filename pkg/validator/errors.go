package validator

import "errors"

// ErrValidationFailed matches every ValidationErrors value under errors.Is.
var ErrValidationFailed = errors.New("validation failed")
