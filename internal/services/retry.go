package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultMaxAttempts bounds how often a throttled call is retried.
	DefaultMaxAttempts = 5
	// DefaultRetryWait is the fallback wait when the server sends no Retry-After hint.
	DefaultRetryWait = time.Second
)

// Outcome is the tagged result of a retried fetch. It distinguishes a
// successful (possibly empty) value from retry exhaustion, so callers can
// treat exhaustion as "skip this item" instead of "empty collection".
type Outcome[T any] struct {
	value     T
	exhausted bool
	ok        bool
}

// Success wraps a fetched value; an empty page is still a Success.
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{value: value, ok: true}
}

// Exhausted marks a fetch abandoned after the maximum attempt count.
func Exhausted[T any]() Outcome[T] {
	return Outcome[T]{exhausted: true}
}

// Ok reports whether a value was obtained.
func (o Outcome[T]) Ok() bool { return o.ok }

// IsExhausted reports whether retries ran out without a value.
func (o Outcome[T]) IsExhausted() bool { return o.exhausted }

// Value returns the fetched value; only meaningful when Ok reports true.
func (o Outcome[T]) Value() T { return o.value }

// FetchWithRetry invokes fn up to maxAttempts times.
//
// A rate-limit or forbidden response (see [APIError.Retryable]) suspends the
// calling goroutine for the server's Retry-After hint, falling back to
// [DefaultRetryWait] when absent, then retries; the wait is fixed per the
// hint, never multiplied. Exhaustion degrades to an [Exhausted] outcome
// rather than an error. Any other error class propagates immediately.
func FetchWithRetry[T any](ctx context.Context, logger *log.Logger, maxAttempts int, fn func(context.Context) (T, error)) (Outcome[T], error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var zero Outcome[T]

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		value, err := fn(ctx)
		if err == nil {
			return Success(value), nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() {
			return zero, err
		}

		wait := apiErr.RetryAfter
		if wait <= 0 {
			wait = DefaultRetryWait
		}

		logger.Warnf("rate limited (status %d), waiting %s (attempt %d/%d)", apiErr.StatusCode, wait, attempt, maxAttempts)

		if err := sleepContext(ctx, wait); err != nil {
			return zero, err
		}
	}

	logger.Warn("max retries reached, skipping")
	return Exhausted[T](), nil
}

// sleepContext blocks for the given duration or until the context ends.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
