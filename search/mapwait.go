package search

import (
	"context"
	"fmt"
	"time"
)

const pollInterval = time.Millisecond

// AwaitMap waits for a map callback to deliver on done. poll, if non-nil,
// runs between checks so a device that needs driving makes progress.
// A timeout <= 0 disables the time limit; ctx still bounds the wait.
func AwaitMap[T any](ctx context.Context, done <-chan T, timeout time.Duration, poll func()) (T, error) {
	var zero T
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		select {
		case v := <-done:
			return v, nil
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ErrMap, ctx.Err())
		case <-expired:
			return zero, fmt.Errorf("%w: timed out after %s", ErrMap, timeout)
		case <-tick.C:
			if poll != nil {
				poll()
			}
		}
	}
}
