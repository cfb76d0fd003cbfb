// Package retry provides the bounded retry loop used for station
// association.  Every loop terminates after its attempt budget; there
// is no unlimited mode.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ── Permanent errors ─────────────────────────────────────────────────

// PermanentError wraps an error to signal that retrying will not help.
// Return [Permanent](err) from the operation function to stop retrying
// immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err has been marked as permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Err      error // last failure
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// ── Backoff ──────────────────────────────────────────────────────────

// Backoff is a bounded retry policy that waits a fixed Delay between
// attempts.
type Backoff struct {
	// Delay is the wait between attempts (default 500ms).
	Delay time.Duration
	// MaxAttempts is the total number of tries including the first
	// (default 20).  Values < 1 are treated as 1.
	MaxAttempts int
	// OnRetry, if set, runs before each wait with the failed attempt
	// number and its error.
	OnRetry func(attempt int, err error)
}

// Fixed returns a policy that tries attempts times, waiting delay
// between tries.
func Fixed(delay time.Duration, attempts int) *Backoff {
	return &Backoff{Delay: delay, MaxAttempts: attempts}
}

// Do executes fn until it succeeds, returns a permanent error, the
// attempt budget runs out, or ctx is cancelled.
//
// The attempt parameter passed to fn is 1-based.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	delay := b.Delay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	budget := b.MaxAttempts
	if budget == 0 {
		budget = 20
	}
	if budget < 1 {
		budget = 1
	}

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}

		if IsPermanent(err) {
			return errors.Unwrap(err)
		}

		if attempt >= budget {
			return &ExhaustedError{Attempts: attempt, Err: err}
		}

		if b.OnRetry != nil {
			b.OnRetry(attempt, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}
