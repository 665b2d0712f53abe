package ratelimit

import (
	"context"
	"time"
)

// Hit is the outcome of recording one request.
type Hit struct {
	Allowed bool
	// Count is the number of hits in the window, including this one when allowed.
	Count int
	// Oldest is the time of the oldest hit still in the window.
	Oldest time.Time
	// ID identifies the recorded hit for Refund. Empty when not allowed.
	ID string
}

// Store records hits atomically per key.
type Store interface {
	// Record drops hits older than window, then records a hit at now when
	// fewer than limit remain.
	Record(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (Hit, error)
	// Refund removes the hit with the given id.
	Refund(ctx context.Context, key, id string) error
	// Reset drops every hit for key.
	Reset(ctx context.Context, key string) error
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time

	key string
	hit string
}

// RetryAfter is how long a rejected caller should wait.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed {
		return 0
	}
	return max(r.ResetAt.Sub(now), 0)
}
