package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeClock is a manual clock whose Sleep advances time instantly.
type FakeClock struct {
	mu     sync.Mutex
	start  time.Time
	now    time.Time
	sleeps []time.Duration

	// OnSleep runs after every Sleep with the total time elapsed since the clock was created.
	OnSleep func(elapsed time.Duration)
}

// NewFakeClock returns a clock starting at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{start: start, now: start}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Elapsed is the time passed since the clock was created.
func (c *FakeClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(c.start)
}

// Sleep advances the clock by d and then reports ctx's error, if any.
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	elapsed := c.now.Sub(c.start)
	hook := c.OnSleep
	c.mu.Unlock()

	if hook != nil {
		hook(elapsed)
	}
	return ctx.Err()
}

// Sleeps returns every duration passed to Sleep.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
