// Package retry provides the bounded polling primitive used while waiting on
// external systems, such as a download link arriving by email.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrTimeout is returned by Poll when every check came back not ready.
var ErrTimeout = errors.New("timed out waiting for result")

var errNotReady = errors.New("not ready")

// Check reports a result and whether it is ready. A non-nil error aborts polling.
type Check[T any] func(ctx context.Context) (T, bool, error)

// Poll runs check immediately, then every interval, for at most
// timeout/interval further attempts.
//
// It returns the first ready result, the first check error, the context's
// error when ctx ends, or ErrTimeout once the attempts are exhausted.
func Poll[T any](ctx context.Context, interval, timeout time.Duration, check Check[T]) (T, error) {
	var zero T
	if interval <= 0 {
		return zero, errors.New("poll interval must be positive")
	}

	attempts := uint64(timeout / interval)
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), attempts), ctx)

	result, err := backoff.RetryWithData(func() (T, error) {
		v, ready, err := check(ctx)
		if err != nil {
			return zero, backoff.Permanent(err)
		}
		if !ready {
			return zero, errNotReady
		}
		return v, nil
	}, b)
	if errors.Is(err, errNotReady) {
		return zero, ErrTimeout
	}
	return result, err
}
