package background

import (
	"context"
	"time"
)

// Poll runs fn every interval until fn reports done, the timeout
// elapses, or the parent context is cancelled. It is the replacement
// for free-floating UI timers: every poll loop has an owner and an
// explicit stop condition.
//
// fn errors do not stop the loop; the next tick retries.
func Poll(ctx context.Context, interval, timeout time.Duration, fn func(ctx context.Context) (done bool, err error)) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := fn(ctx)
			if err != nil {
				continue
			}
			if done {
				return nil
			}
		}
	}
}
