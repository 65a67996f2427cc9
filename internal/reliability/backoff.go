// Package reliability provides the backoff policy driving the
// client's reconnection schedule.
package reliability

import "time"

// BackoffPolicy computes the delay before a numbered retry attempt.
// Attempts are numbered from 1.
type BackoffPolicy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay on every attempt:
// Interval × 2^(attempt−1). No jitter and no cap; the caller bounds
// the schedule with a maximum attempt count.
type ExponentialBackoff struct {
	Interval time.Duration
}

// NewExponentialBackoff creates a pure doubling backoff policy.
func NewExponentialBackoff(interval time.Duration) ExponentialBackoff {
	return ExponentialBackoff{Interval: interval}
}

// NextDelay implements BackoffPolicy.
func (e ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	shift := uint(attempt - 1)
	if shift > 62 {
		shift = 62
	}
	return e.Interval << shift
}
