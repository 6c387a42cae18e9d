// Package retry re-runs transient operations with a linear backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Step is the backoff unit: attempt i waits i*Step before the next try.
var Step = 500 * time.Millisecond

// Do calls fn up to attempts times, stopping early on success or when ctx is
// done. The last error is returned wrapped with the attempt count.
func Do[T any](ctx context.Context, attempts int, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		wait := time.Duration(i+1) * Step
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("after %d attempts: %w", i+1, ctx.Err())
		case <-time.After(wait):
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
