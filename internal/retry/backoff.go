// Package retry implements the exponential backoff used by the HTTP
// Publisher for connect-class failures (BlobStore calls are not retried),
// grounded on the throttle/cache
// timing fields the teacher's Jira data-center client keeps by hand
// (lastRequest time.Time, RequestDelay) rather than any retry library —
// the pack carries no retry/backoff dependency.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Policy configures an exponential backoff run.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Default is 3 attempts with a 500ms base delay, doubling each attempt.
var Default = Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}

// Retryable marks an error as a connect-class failure eligible for retry.
// Non-retryable errors (4xx except 401, validation failures) must NOT be
// wrapped with this.
type Retryable struct {
	Err error
}

func (r Retryable) Error() string { return r.Err.Error() }
func (r Retryable) Unwrap() error { return r.Err }

// MarkRetryable wraps err so Do will retry it.
func MarkRetryable(err error) error {
	if err == nil {
		return nil
	}
	return Retryable{Err: err}
}

// Do runs fn up to p.MaxAttempts times, sleeping p.BaseDelay*2^attempt
// between attempts, but only when fn's error is Retryable. A
// non-retryable error returns immediately. The context is checked before
// every attempt and every sleep.
func Do(ctx context.Context, p Policy, log zerolog.Logger, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		var r Retryable
		if !errors.As(err, &r) {
			return err
		}
		lastErr = err
		if attempt == p.MaxAttempts-1 {
			break
		}
		delay := p.BaseDelay * time.Duration(1<<uint(attempt))
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt+1).Dur("delay", delay).Msg("retrying after connect-class failure")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s: retries exhausted: %w", op, lastErr)
}

// MaxConnectionsRetry retries fn while it reports a "421 maximum number of
// connections" style condition, sleeping interval between attempts, until
// ctx is canceled or the deadline elapses. Grounds the source FTP fetch's
// retry behavior, which has no fixed attempt count but an outer 12-hour
// wall-clock budget instead.
func MaxConnectionsRetry(ctx context.Context, deadline time.Duration, interval time.Duration, log zerolog.Logger, fn func(ctx context.Context) (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	for {
		busy, err := fn(ctx)
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
		log.Warn().Dur("interval", interval).Msg("source at max connections, retrying")
		select {
		case <-ctx.Done():
			return fmt.Errorf("source fetch: max-connections deadline exceeded: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
}
