package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return nil
	}, 3, 10*time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, 5, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return expectedErr
	}, 3, time.Millisecond)

	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}, 10, 10*time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts, "should stop when context is canceled")
}

func TestRetryWithBackoff_ZeroMaxAttempts(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return errors.New("error")
	}, 0, time.Millisecond)

	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	assert.Equal(t, 0, attempts, "should not attempt with maxAttempts=0")
}

func TestRateLimitRetry_OnlyRetriesRateLimits(t *testing.T) {
	policy := RateLimitRetry(4, time.Millisecond)

	t.Run("rate limit is retried", func(t *testing.T) {
		attempts := 0
		err := policy.Do(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return fmt.Errorf("%w: slow down", ErrRateLimited)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("invalid request is not retried", func(t *testing.T) {
		attempts := 0
		err := policy.Do(context.Background(), func() error {
			attempts++
			return fmt.Errorf("%w: bad image", ErrInvalidRequest)
		})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Equal(t, 1, attempts)
	})

	t.Run("upstream unavailable is not retried", func(t *testing.T) {
		attempts := 0
		err := policy.Do(context.Background(), func() error {
			attempts++
			return fmt.Errorf("%w: 503", ErrUpstreamUnavailable)
		})
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.Equal(t, 1, attempts)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		attempts := 0
		err := policy.Do(context.Background(), func() error {
			attempts++
			return ErrRateLimited
		})
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, 4, attempts)
	})
}

func TestNoRetry(t *testing.T) {
	attempts := 0
	err := NoRetry.Do(context.Background(), func() error {
		attempts++
		return ErrRateLimited
	})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, attempts)
}
