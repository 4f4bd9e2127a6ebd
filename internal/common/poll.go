package common

import (
	"context"
	"errors"
	"time"
)

// ErrPollTimeout is returned by PollUntil when the deadline passes first
var ErrPollTimeout = errors.New("poll timed out")

// PollUntil evaluates predicate every interval until it reports true, returns an
// error, the timeout elapses (ErrPollTimeout) or ctx is done (ctx.Err()).
// The predicate is evaluated once immediately.
func PollUntil(ctx context.Context, timeout, interval time.Duration, predicate func(ctx context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := predicate(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrPollTimeout
		case <-ticker.C:
		}
	}
}
