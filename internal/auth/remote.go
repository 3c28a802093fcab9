package auth

import (
	"context"
	"math/rand"
	"time"
)

// Remote stands in for the network round trip behind a submission. A real
// client replaces it without changing how handlers are driven.
type Remote interface {
	Call(ctx context.Context, latency time.Duration) error
}

// Simulator waits out a fixed latency, or returns early when ctx ends.
type Simulator struct{}

func (Simulator) Call(ctx context.Context, latency time.Duration) error {
	if latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Outcome decides whether a placeholder backend call succeeds.
type Outcome func() bool

// RandomOutcome succeeds with probability rate.
func RandomOutcome(rate float64) Outcome {
	return func() bool { return rand.Float64() < rate }
}

// Always returns a fixed outcome.
func Always(ok bool) Outcome {
	return func() bool { return ok }
}
