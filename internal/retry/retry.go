package retry

import (
	"context"
	"time"

	ai "github.com/spetersoncode/warden"
)

// effectiveDelay returns the delay to use, honoring server's Retry-After if larger.
func effectiveDelay(configuredDelay time.Duration, err error) time.Duration {
	if serverDelay := ai.RetryAfterOf(err); serverDelay > configuredDelay {
		return serverDelay
	}
	return configuredDelay
}

// Do executes fn with retry logic.
// Only transient errors are retried. Context cancellation during a backoff
// wait returns the context error.
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	return DoWithEvents(ctx, cfg, nil, fn)
}

// DoWithEvents is like Do but reports progress to obs. A nil observer is
// equivalent to Do.
func DoWithEvents[T any](ctx context.Context, cfg Config, obs Observer, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	maxAttempts := cfg.attempts()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		obs.emit(Event{Type: EventAttemptStart, Attempt: attempt + 1, MaxAttempts: maxAttempts})

		result, err := fn(ctx)
		if err == nil {
			obs.emit(Event{Type: EventSuccess, Attempt: attempt + 1, MaxAttempts: maxAttempts})
			return result, nil
		}

		lastErr = err
		retryable := IsTransient(err) && ctx.Err() == nil

		obs.emit(Event{
			Type:        EventAttemptFailed,
			Attempt:     attempt + 1,
			MaxAttempts: maxAttempts,
			Error:       err,
			Retryable:   retryable,
		})

		if !retryable {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < maxAttempts-1 {
			delay := effectiveDelay(cfg.Delay(attempt), err)
			obs.emit(Event{Type: EventRetrying, Attempt: attempt + 1, MaxAttempts: maxAttempts, Delay: delay})

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	obs.emit(Event{Type: EventExhausted, Attempt: maxAttempts, MaxAttempts: maxAttempts, Error: lastErr})
	return zero, lastErr
}
