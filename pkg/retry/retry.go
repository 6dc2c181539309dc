// Package retry runs an operation with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Policy describes how many attempts to make and how long to wait between them.
// The delay before retry n (0-based) is InitialDelay * Multiplier^n, capped at MaxDelay.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	// Retryable decides whether an error is worth another attempt. Nil retries everything.
	Retryable func(error) bool
}

// DefaultPolicy makes up to 3 attempts, waiting 1s and then 2s between
// them. Delays double and are capped at 4s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2,
		MaxDelay:     4 * time.Second,
	}
}

// Delay returns the wait before retry number attempt (0-based).
func (p Policy) Delay(attempt int) time.Duration {
	d := float64(p.InitialDelay)
	for range attempt {
		d *= p.Multiplier
	}
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

// permanent marks an error that must not be retried.
type permanent struct{ err error }

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent wraps err so Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanent{err: err}
}

// Retrier executes operations under a Policy.
type Retrier struct {
	policy Policy
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

// New creates a Retrier. A nil logger discards attempt logs.
func New(policy Policy, logger *slog.Logger) *Retrier {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Retrier{policy: policy, logger: logger, sleep: sleepContext}
}

// Do runs op until it succeeds, returns a permanent or non-retryable error,
// the attempts run out, or ctx is cancelled. The last error is returned.
func (r *Retrier) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := range r.policy.MaxAttempts {
		if attempt > 0 {
			delay := r.policy.Delay(attempt - 1)
			r.logger.Debug("retrying", "op", name, "attempt", attempt+1, "delay", delay, "error", lastErr)
			if err := r.sleep(ctx, delay); err != nil {
				return fmt.Errorf("%s: %w (last error: %w)", name, err, lastErr)
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		var perm *permanent
		if errors.As(err, &perm) {
			return perm.err
		}
		if r.policy.Retryable != nil && !r.policy.Retryable(err) {
			return err
		}
		lastErr = err
	}

	r.logger.Warn("giving up", "op", name, "attempts", r.policy.MaxAttempts, "error", lastErr)
	return lastErr
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
