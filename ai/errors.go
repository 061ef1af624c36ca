package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// Error classes for capability calls. Only ErrRateLimited is worth retrying
// with backoff; the others either won't change on retry or need operator action.
var (
	// ErrRateLimited indicates the upstream API throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidRequest indicates the request itself was rejected, e.g. malformed
	// content, an oversized prompt or a filtered image.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUpstreamUnavailable indicates the upstream API could not be reached or failed.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrTimeout indicates the call exceeded its deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrAuthentication indicates missing or rejected credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrEmptyResponse indicates the model returned no choices.
	ErrEmptyResponse = errors.New("empty response from model")
)

// Classify wraps err with the error class it belongs to. Errors already
// carrying a class and context cancellation are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if classified(err) || errors.Is(err, context.Canceled) {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded) || llms.IsTimeoutError(err):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case llms.IsRateLimitError(err):
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case llms.IsInvalidRequestError(err), llms.IsTokenLimitError(err), llms.IsContentFilterError(err),
		llms.IsQuotaExceededError(err):
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	case llms.IsAuthenticationError(err):
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	default:
		return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
}

// IsRetryable reports whether err is a rate-limit error.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

func classified(err error) bool {
	for _, class := range []error{ErrRateLimited, ErrInvalidRequest, ErrUpstreamUnavailable, ErrTimeout, ErrAuthentication, ErrEmptyResponse} {
		if errors.Is(err, class) {
			return true
		}
	}
	return false
}
