package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/llms"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limit", llms.NewError(llms.ErrCodeRateLimit, "openai", "Rate limit exceeded"), ErrRateLimited},
		{"invalid request", llms.NewError(llms.ErrCodeInvalidRequest, "openai", "Invalid request"), ErrInvalidRequest},
		{"token limit", llms.NewError(llms.ErrCodeTokenLimit, "openai", "Context length exceeded"), ErrInvalidRequest},
		{"content filter", llms.NewError(llms.ErrCodeContentFilter, "openai", "filtered"), ErrInvalidRequest},
		{"provider unavailable", llms.NewError(llms.ErrCodeProviderUnavailable, "openai", "503"), ErrUpstreamUnavailable},
		{"authentication", llms.NewError(llms.ErrCodeAuthentication, "openai", "bad key"), ErrAuthentication},
		{"llm timeout", llms.NewError(llms.ErrCodeTimeout, "openai", "timeout"), ErrTimeout},
		{"deadline exceeded", fmt.Errorf("post: %w", context.DeadlineExceeded), ErrTimeout},
		{"unknown error", errors.New("connection refused"), ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err, "cause must stay reachable")
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	assert.NoError(t, Classify(nil))

	canceled := fmt.Errorf("call: %w", context.Canceled)
	assert.Same(t, canceled, Classify(canceled))

	already := fmt.Errorf("%w: slow down", ErrRateLimited)
	assert.Same(t, already, Classify(already))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Classify(llms.NewError(llms.ErrCodeRateLimit, "openai", "429"))))
	assert.False(t, IsRetryable(Classify(llms.NewError(llms.ErrCodeInvalidRequest, "openai", "400"))))
	assert.False(t, IsRetryable(errors.New("other")))
}
