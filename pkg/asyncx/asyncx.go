// Package asyncx holds the small concurrency helpers used by the service
// layer: fire-and-forget goroutines for advisory work and a retry wrapper
// for flaky external calls.
package asyncx

import (
	"context"
	"time"

	"github.com/pressroom-io/pressroom/pkg/logx"
)

// Do fires fn in a goroutine and forgets it. A panic inside fn is recovered
// and logged so advisory work can never take the request path down.
func Do(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logx.WithField("panic", r).Error("asyncx: recovered panic in background task")
			}
		}()
		fn()
	}()
}

// RetryWithBackoff calls fn up to attempts times with exponential backoff
// starting at initialDelay. The delay doubles after each failed attempt.
// Respects context cancellation between retries.
func RetryWithBackoff[T any](
	ctx context.Context,
	attempts int,
	initialDelay time.Duration,
	fn func(context.Context) (T, error),
) (T, error) {
	var (
		zero  T
		err   error
		val   T
		delay = initialDelay
	)
	for i := range attempts {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		val, err = fn(ctx)
		if err == nil {
			return val, nil
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return zero, err
}
