package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// ExponentialBackoff computes capped exponential delays with upward jitter.
type ExponentialBackoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	// Jitter is the largest fraction of the delay added on top of it.
	// Zero disables jitter.
	Jitter float64
}

// NextInterval returns the delay before the given retry. Attempt starts at 1
// for the first retry.
// Formula: d = min(Initial * Multiplier^(attempt-1), Max); d + d*Jitter*rand[0,1)
func (e ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.Initial
	if initial <= 0 {
		initial = DefaultMinTimeout
	}

	max := e.Max
	if max <= 0 {
		max = DefaultMaxTimeout
	}

	multiplier := e.Multiplier
	if multiplier <= 0 {
		multiplier = DefaultFactor
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if interval > float64(max) {
		interval = float64(max)
	}

	// Jitter is applied after the cap and only ever lengthens the delay.
	if e.Jitter > 0 {
		interval += interval * e.Jitter * rand.Float64()
	}

	return time.Duration(interval)
}
