package orchestrator

import (
	"context"
	"time"
)

// sleepCtx waits for d or until ctx is done. The next action never starts
// before d has elapsed unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
