package http_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmhttp "github.com/tppkitchen/backoffice/internal/adapter/llm/http"
)

func fastRetryConfig() llmhttp.RetryConfig {
	return llmhttp.RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestShouldRetry(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "timeout is retryable", err: llmhttp.NewTimeoutError("claude", "deadline exceeded"), expected: true},
		{name: "authentication is not retryable", err: llmhttp.NewAuthenticationError("claude", "bad key"), expected: false},
		{name: "empty response is not retryable", err: llmhttp.NewEmptyResponseError("gemini"), expected: false},
		{name: "malformed output is not retryable", err: llmhttp.NewMalformedOutputError("gemini", "no JSON object in completion"), expected: false},
		{name: "plain error is not retryable", err: errors.New("boom"), expected: false},
		{
			name: "wrapped retryable error",
			err: &llmhttp.Error{
				Type:       llmhttp.ErrTypeServiceUnavailable,
				Message:    "overloaded",
				StatusCode: 503,
				Retryable:  true,
				Provider:   "claude",
			},
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, llmhttp.ShouldRetry(tc.err))
		})
	}
}

func TestExponentialBackoff_RespectsMaxBackoff(t *testing.T) {
	config := llmhttp.RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     4 * time.Second,
		Multiplier:     2.0,
	}

	for attempt := 0; attempt < 10; attempt++ {
		backoff := llmhttp.ExponentialBackoff(attempt, config)
		assert.GreaterOrEqual(t, backoff, time.Duration(0))
		assert.LessOrEqual(t, backoff, config.MaxBackoff)
	}
}

func TestExponentialBackoff_Grows(t *testing.T) {
	config := llmhttp.RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     time.Hour,
		Multiplier:     2.0,
	}

	// With ±25% jitter, attempt 3 (8s nominal, min 6s) always exceeds
	// attempt 0 (1s nominal, max 1.25s).
	early := llmhttp.ExponentialBackoff(0, config)
	late := llmhttp.ExponentialBackoff(3, config)

	assert.Greater(t, late, early)
}

func TestRetryWithBackoff_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := llmhttp.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, fastRetryConfig())

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriesTransientFailure(t *testing.T) {
	calls := 0
	err := llmhttp.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return llmhttp.NewTimeoutError("claude", "deadline exceeded")
		}
		return nil
	}, fastRetryConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_StopsOnPermanentFailure(t *testing.T) {
	calls := 0
	authErr := llmhttp.NewAuthenticationError("claude", "bad key")
	err := llmhttp.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return authErr
	}, fastRetryConfig())

	assert.ErrorIs(t, err, authErr)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := llmhttp.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return llmhttp.NewTimeoutError("gemini", "deadline exceeded")
	}, fastRetryConfig())

	require.Error(t, err)
	// Initial attempt plus MaxRetries retries.
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		calls++
		return nil
	}, fastRetryConfig())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}
