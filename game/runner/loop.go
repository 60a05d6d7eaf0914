// Package runner drives a simulation in real time. A Loop ticks at a
// fixed interval, measures the real elapsed time since the previous tick
// and hands it to a step function, so the simulation sees the true frame
// duration even when ticks are late.
package runner

import (
	"context"
	"time"
)

// DefaultInterval is the nominal 60 Hz frame interval
const DefaultInterval = time.Second / 60

// StepFunc advances the simulation by deltaMs. Returning false stops the
// loop.
type StepFunc func(deltaMs float64) bool

// Loop is a fixed-interval host loop
type Loop struct {
	interval time.Duration
	now      func() time.Time
}

// Option configures a Loop
type Option func(*Loop)

// WithClock replaces time.Now for elapsed time measurement
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// NewLoop creates a loop ticking every interval. A non-positive interval
// uses DefaultInterval.
func NewLoop(interval time.Duration, opts ...Option) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	l := &Loop{interval: interval, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the tick interval
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Run calls step on every tick until step returns false or ctx is done.
// It returns ctx.Err() when cancelled and nil when step ended the loop.
func (l *Loop) Run(ctx context.Context, step StepFunc) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := l.now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := l.now()
			deltaMs := float64(now.Sub(last)) / float64(time.Millisecond)
			last = now
			if !step(deltaMs) {
				return nil
			}
		}
	}
}
