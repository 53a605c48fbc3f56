package retry

import "time"

const (
	DefaultRetries    = 3
	DefaultMinTimeout = time.Second
	DefaultMaxTimeout = 30 * time.Second
	DefaultFactor     = 2.0

	// jitterFactor bounds the random extra delay at 10% of the computed delay.
	jitterFactor = 0.1
)

// Options controls the retry loop of Do.
type Options struct {
	// Retries is the number of attempts after the first one. Negative values mean zero.
	Retries int
	// MinTimeout is the delay before the first retry.
	MinTimeout time.Duration
	// MaxTimeout caps the delay before jitter is added.
	MaxTimeout time.Duration
	// Factor multiplies the delay after each retry.
	Factor float64
	// OnRetry is called with the failure and its 1-indexed attempt number
	// before the executor sleeps.
	OnRetry func(err error, attempt int)
}

// DefaultOptions returns 3 retries with 1s..30s exponential backoff, factor 2.
func DefaultOptions() Options {
	return Options{
		Retries:    DefaultRetries,
		MinTimeout: DefaultMinTimeout,
		MaxTimeout: DefaultMaxTimeout,
		Factor:     DefaultFactor,
	}
}

// normalized fills zero durations and factor with defaults.
func (o Options) normalized() Options {
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.MinTimeout <= 0 {
		o.MinTimeout = DefaultMinTimeout
	}
	if o.MaxTimeout <= 0 {
		o.MaxTimeout = DefaultMaxTimeout
	}
	if o.MaxTimeout < o.MinTimeout {
		o.MaxTimeout = o.MinTimeout
	}
	if o.Factor <= 0 {
		o.Factor = DefaultFactor
	}
	return o
}

// Backoff returns the delay strategy described by the options.
func (o Options) Backoff() ExponentialBackoff {
	n := o.normalized()
	return ExponentialBackoff{
		Initial:    n.MinTimeout,
		Max:        n.MaxTimeout,
		Multiplier: n.Factor,
		Jitter:     jitterFactor,
	}
}

// Merge applies per-call overrides on top of o. Retries always comes from
// override, so an override can disable retries; zero timing fields, factor
// and a nil OnRetry inherit from o.
func (o Options) Merge(override *Options) Options {
	if override == nil {
		return o
	}
	out := *override
	if out.MinTimeout <= 0 {
		out.MinTimeout = o.MinTimeout
	}
	if out.MaxTimeout <= 0 {
		out.MaxTimeout = o.MaxTimeout
	}
	if out.Factor <= 0 {
		out.Factor = o.Factor
	}
	if out.OnRetry == nil {
		out.OnRetry = o.OnRetry
	}
	return out
}
