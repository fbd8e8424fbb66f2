package handler

import (
	"fmt"
	"time"
)

// secondsPerHour is the rate-limit reset window the backoff aligns to.
const secondsPerHour = 3600

// untilNextHour returns the time remaining until the top of the next clock
// hour. The backend resets its call quota on hour boundaries, so throttled
// requests wait out the current window instead of polling on a fixed interval.
func untilNextHour(t time.Time) time.Duration {
	elapsed := t.Minute()*60 + t.Second()
	return time.Duration(secondsPerHour-elapsed) * time.Second
}

// RetryExhaustedError reports that the configured attempt cap was reached
// before the operation resolved.
type RetryExhaustedError struct {
	// Attempts is the number of attempts made.
	Attempts int
	// LastStatus is the status of the final attempt when it produced a
	// response (e.g. 429), zero otherwise.
	LastStatus int
	cause      error
}

// Error implements the error interface.
func (e *RetryExhaustedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.cause)
	}
	if e.LastStatus != 0 {
		return fmt.Sprintf("retries exhausted after %d attempts (last status %d)", e.Attempts, e.LastStatus)
	}
	return fmt.Sprintf("retries exhausted after %d attempts", e.Attempts)
}

// Unwrap returns the fault that triggered the final retry, if any.
func (e *RetryExhaustedError) Unwrap() error {
	return e.cause
}
