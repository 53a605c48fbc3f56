package retry_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

func fastOptions(retries int) retry.Options {
	return retry.Options{
		Retries:    retries,
		MinTimeout: time.Millisecond,
		MaxTimeout: 2 * time.Millisecond,
		Factor:     2,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var retried []int

	opts := fastOptions(2)
	opts.OnRetry = func(err error, attempt int) {
		retried = append(retried, attempt)
	}

	got, err := retry.Do(context.Background(), func(context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("network unreachable")
		}
		return "ok", nil
	}, opts)

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_StopsOnNonRetryableError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	invalid := errors.New("invalid recipient")

	_, err := retry.Do(context.Background(), func(context.Context) (int, error) {
		calls.Add(1)
		return 0, invalid
	}, fastOptions(5))

	assert.Same(t, invalid, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_ReturnsLastErrorUnwrapped(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var last error

	_, err := retry.Do(context.Background(), func(context.Context) (int, error) {
		n := calls.Add(1)
		last = fmt.Errorf("timeout on attempt %d", n)
		return 0, last
	}, fastOptions(2))

	assert.Equal(t, int32(3), calls.Load())
	assert.Same(t, last, err)
}

func TestDo_ZeroRetriesRunsOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	_, err := retry.Do(context.Background(), func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("socket hang up")
	}, fastOptions(0))

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_NegativeRetriesTreatedAsZero(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	_, err := retry.Do(context.Background(), func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("socket hang up")
	}, fastOptions(-3))

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	opts := retry.Options{Retries: 3, MinTimeout: time.Hour, MaxTimeout: time.Hour, Factor: 2}
	opts.OnRetry = func(error, int) { cancel() }

	start := time.Now()
	_, err := retry.Do(ctx, func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("rate limit exceeded")
	}, opts)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), calls.Load())
	assert.Less(t, time.Since(start), time.Second)
}

func TestDoErr(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	err := retry.DoErr(context.Background(), func(context.Context) error {
		if calls.Add(1) == 1 {
			return errors.New("ECONNREFUSED")
		}
		return nil
	}, fastOptions(1))

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
