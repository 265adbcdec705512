// Package ratelimit provides fixed-window request counters used to enforce
// per-route rate limits. A window is identified by truncating the current
// time to the window size, so all instances sharing a clock agree on window
// boundaries without coordination.
package ratelimit

import (
	"context"
	"time"
)

// Store counts requests per key within fixed time windows.
type Store interface {
	// Incr atomically increments the counter for key in the window that
	// contains now and returns the updated count together with the time
	// at which that window ends. The count includes the current request.
	//
	// Implementations must be safe for concurrent use.
	Incr(ctx context.Context, key string, window time.Duration, now time.Time) (count int64, reset time.Time, err error)
}

// windowStart truncates now to the start of its fixed window.
func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}
