// Package ratelimit implements fixed-window request limits keyed by client.
// The redis limiter shares counters across processes; the memory limiter is
// the single-process fallback.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
