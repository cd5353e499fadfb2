package gridkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryOutcome reports how a retried action finished.
type RetryOutcome struct {
	// Success is true when one attempt completed without error
	Success bool
	// Attempts is the number of times the action was invoked
	Attempts int
	// Err is the error of the last failed attempt, nil on success
	Err error
}

// Retry invokes action up to maxAttempts times and stops at the first attempt
// that returns nil. Failed attempts, including panics, are logged and counted;
// they are never propagated. A non-positive maxAttempts never calls action.
//
// Retry blocks for as long as the attempts take. Callers that need a deadline
// must enforce it inside action.
func Retry(maxAttempts int, action func() error) RetryOutcome {
	var outcome RetryOutcome
	for outcome.Attempts < maxAttempts {
		outcome.Attempts++
		Logger().Info("running attempt", "attempt", outcome.Attempts, "max_attempts", maxAttempts)

		err := safeCall(action)
		if err == nil {
			outcome.Success = true
			outcome.Err = nil
			return outcome
		}
		outcome.Err = err
		Logger().Error("attempt failed", "attempt", outcome.Attempts, "max_attempts", maxAttempts, "error", err)
	}
	return outcome
}

// RetryWithBackoff behaves like Retry but waits delay between attempts and
// gives up early when ctx is done. The context error is reported in Err when
// cancellation ends the loop.
func RetryWithBackoff(ctx context.Context, maxAttempts int, delay time.Duration, action func(ctx context.Context) error) RetryOutcome {
	var outcome RetryOutcome
	if maxAttempts <= 0 {
		return outcome
	}
	if delay <= 0 {
		delay = time.Millisecond
	}

	backoff := retry.WithMaxRetries(uint64(maxAttempts-1), retry.NewConstant(delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		outcome.Attempts++
		Logger().Info("running attempt", "attempt", outcome.Attempts, "max_attempts", maxAttempts)

		err := safeCall(func() error { return action(ctx) })
		if err != nil {
			outcome.Err = err
			Logger().Error("attempt failed", "attempt", outcome.Attempts, "max_attempts", maxAttempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		outcome.Success = true
		outcome.Err = nil
		return outcome
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(outcome.Err, ctxErr) {
		outcome.Err = ctxErr
	}
	return outcome
}

// safeCall runs fn and turns a panic into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
