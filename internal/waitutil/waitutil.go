package waitutil

import (
	"context"
	"time"
)

// Exponential is a simple exponentially increasing duration.
type Exponential struct {
	value time.Duration
}

// Reset resets the duration to zero.
func (e *Exponential) Reset() {
	e.value = 0
}

// Next returns the next duration, which is the previous one multiplied by 2, always abiding by the min and max provided.
func (e *Exponential) Next(min, max time.Duration) time.Duration {
	e.value *= 2
	if e.value > max {
		e.value = max
	}
	if e.value < min {
		e.value = min
	}
	return e.value
}

// Sleep sleeps for the given duration or until the context is canceled.
//
//	the context error is returned if context is canceled.
func Sleep(ctx context.Context, delay time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
