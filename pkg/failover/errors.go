package failover

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoProvider          = errors.New("failover: primary provider is required")
	ErrNilBackup           = errors.New("failover: backup provider is nil")
	ErrResultCountMismatch = errors.New("failover: provider returned wrong number of results")
	ErrAllProvidersFailed  = errors.New("all providers failed")
)

// Attempt is one diagnostic entry collected while walking the provider chain.
type Attempt struct {
	Provider string
	Err      error
}

// AggregateError is returned when backups exist and the whole chain failed
// to resolve every message.
type AggregateError struct {
	Attempts []Attempt
}

func (e *AggregateError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return ErrAllProvidersFailed.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap exposes every per-provider error to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Is matches ErrAllProvidersFailed.
func (e *AggregateError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

// Providers lists the provider names in attempt order, repeating a provider
// once per recorded failure.
func (e *AggregateError) Providers() []string {
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, a.Provider)
	}
	return names
}

// ProviderError is an adapter failure pre-classified as temporary or not.
type ProviderError struct {
	Provider  string
	Code      int
	Temporary bool
	Err       error
}

// NewProviderError wraps err for provider. A status code of 0 means unknown.
func NewProviderError(provider string, code int, temporary bool, err error) *ProviderError {
	return &ProviderError{Provider: provider, Code: code, Temporary: temporary, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports the adapter's classification.
func (e *ProviderError) Retryable() bool { return e.Temporary }

// StatusCode returns the HTTP-like status the provider answered with.
func (e *ProviderError) StatusCode() int { return e.Code }
