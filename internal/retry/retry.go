// Package retry re-runs transient operations with jittered exponential
// backoff.
package retry

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net"
	"syscall"
	"time"
)

// Predicate reports whether err is worth another attempt.
type Predicate func(error) bool

// Config controls retry behavior. The zero value makes one attempt.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// OnRetry, when set, is called before sleeping ahead of the next attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns the configuration used for provider requests.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Attempts returns a copy of c limited to n attempts.
func (c Config) Attempts(n int) Config {
	c.MaxAttempts = n
	return c
}

// Hinted is implemented by errors that carry a server-supplied wait, such
// as an HTTP Retry-After header. The hint replaces the computed backoff,
// capped at MaxDelay.
type Hinted interface {
	RetryAfter() time.Duration
}

// Do calls fn until it succeeds, fails with an error shouldRetry rejects,
// or runs out of attempts. A nil shouldRetry uses IsRetryable.
func Do(ctx context.Context, config Config, shouldRetry Predicate, fn func() error) error {
	attempts := max(config.MaxAttempts, 1)
	if shouldRetry == nil {
		shouldRetry = IsRetryable
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts || !shouldRetry(err) {
			return err
		}

		delay := delayFor(config, attempt, err)
		if config.OnRetry != nil {
			config.OnRetry(attempt, err, delay)
		}
		if !sleep(ctx, delay) {
			return ctx.Err()
		}
	}
	return err
}

// IsRetryable reports whether err looks transient: timeouts, dropped or
// refused connections, and truncated responses. Cancellation never is.
func IsRetryable(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EPIPE):
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func delayFor(config Config, attempt int, err error) time.Duration {
	var hinted Hinted
	if errors.As(err, &hinted) {
		if d := hinted.RetryAfter(); d > 0 {
			if config.MaxDelay > 0 {
				d = min(d, config.MaxDelay)
			}
			return d
		}
	}
	return backoffDelay(config.BaseDelay, config.MaxDelay, attempt)
}

// backoffDelay returns a full-jitter delay in [0, min(base*2^(attempt-1), max)].
func backoffDelay(base, maxDelay time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	attempt = max(attempt, 1)

	delay := base << (attempt - 1)
	if delay <= 0 || (maxDelay > 0 && delay > maxDelay) {
		delay = maxDelay
	}
	if delay <= 0 {
		return 0
	}
	return rand.N(delay + 1)
}

func sleep(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
