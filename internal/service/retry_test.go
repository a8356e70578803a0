package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusError mimics a provider error that only exposes a status code
type statusError struct{ status int }

func (e statusError) Error() string   { return "provider error" }
func (e statusError) StatusCode() int { return e.status }

func recordingPolicy(waits *[]time.Duration) RetryPolicy {
	p := DefaultRetryPolicy()
	p.Sleep = func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return p
}

func TestWithRetry_TransientThenSuccess(t *testing.T) {
	var waits []time.Duration
	calls := 0

	got, err := WithRetry(context.Background(), recordingPolicy(&waits), func(context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", statusError{status: 503}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, waits)
}

func TestWithRetry_NonTransientNotRetried(t *testing.T) {
	var waits []time.Duration
	calls := 0
	original := statusError{status: 404}

	_, err := WithRetry(context.Background(), recordingPolicy(&waits), func(context.Context) (int, error) {
		calls++
		return 0, original
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, original, err)
	assert.Empty(t, waits)
}

func TestWithRetry_ExhaustedReturnsLastError(t *testing.T) {
	var waits []time.Duration
	calls := 0

	_, err := WithRetry(context.Background(), recordingPolicy(&waits), func(context.Context) (int, error) {
		calls++
		return 0, errors.New("model is overloaded, try later")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, IsTransientError(err))
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, waits)
}

func TestWithRetry_OnRetryCallback(t *testing.T) {
	var attempts []int
	p := recordingPolicy(new([]time.Duration))
	p.OnRetry = func(attempt int, _ time.Duration, _ error) {
		attempts = append(attempts, attempt)
	}

	_, _ = WithRetry(context.Background(), p, func(context.Context) (int, error) {
		return 0, &APIError{Status: 503, Body: "busy"}
	})

	assert.Equal(t, []int{1, 2}, attempts)
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := DefaultRetryPolicy()
	p.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}
	calls := 0

	_, err := WithRetry(ctx, p, func(context.Context) (int, error) {
		calls++
		return 0, statusError{status: 503}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 1*time.Second, p.backoff(0))
	assert.Equal(t, 2*time.Second, p.backoff(1))
	assert.Equal(t, 4*time.Second, p.backoff(2))
	assert.Equal(t, 4*time.Second, p.backoff(5), "capped at MaxBackoff")
}

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"api 503", &APIError{Status: 503}, true},
		{"wrapped 503", errors.Join(errors.New("call"), &APIError{Status: 503}), true},
		{"api 429", &APIError{Status: 429}, false},
		{"api 404", &APIError{Status: 404}, false},
		{"overloaded message", errors.New("The model is OVERLOADED"), true},
		{"plain error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransientError(tt.err))
		})
	}
}
