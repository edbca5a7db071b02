// Package retry holds the waiting half of reconnect loops: how long to back off
// and how to wait for it without missing a cancellation.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Fixed returns a policy that always waits interval.
func Fixed(interval time.Duration) backoff.BackOff {
	return backoff.NewConstantBackOff(interval)
}

// Wait sleeps for the next interval of b. It returns false if ctx was
// cancelled first or the policy says stop.
func Wait(ctx context.Context, b backoff.BackOff) bool {
	d := b.NextBackOff()
	if d == backoff.Stop {
		return false
	}
	return Sleep(ctx, d)
}

// Sleep waits d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
