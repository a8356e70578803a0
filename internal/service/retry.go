package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"vlxd/internal/config"
)

// RetryPolicy holds retry configuration for model calls
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Sleep waits between attempts; tests replace it to avoid real delays
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry, when set, is told about every failed attempt that will be retried
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultRetryPolicy is 3 attempts with 1s, 2s, 4s backoff
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     4 * time.Second,
		Sleep:          sleepContext,
	}
}

// RetryPolicyFromConfig builds the policy from estimator settings
func RetryPolicyFromConfig(cfg config.EstimatorConfig) RetryPolicy {
	p := DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialBackoff > 0 {
		p.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		p.MaxBackoff = cfg.MaxBackoff
	}
	return p
}

// backoff returns the wait after the given 0-based failed attempt
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.InitialBackoff << attempt
	if p.MaxBackoff > 0 && (d > p.MaxBackoff || d <= 0) {
		d = p.MaxBackoff
	}
	return d
}

// WithRetry runs fn up to MaxAttempts times. Only transient errors are retried;
// anything else is returned immediately. After the last attempt the last error
// is returned unchanged so callers can still classify it.
func WithRetry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransientError(err) || attempt == attempts-1 {
			break
		}

		wait := p.backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, wait, err)
		}
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// IsTransientError reports whether err signals temporary provider overload:
// an HTTP 503 status or an "overloaded" message.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) && coded.StatusCode() == http.StatusServiceUnavailable {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "overloaded")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
