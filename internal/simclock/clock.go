// Package simclock keeps simulated time for the kitchen. Time only moves when
// the owner calls Advance, once per tick, so every timer and timestamp in the
// simulation is reproducible.
package simclock

import (
	"fmt"
	"time"
)

// Clock counts ticks and accumulated simulated time.
type Clock struct {
	scale float64
	tick  uint64
	now   time.Duration
}

// New creates a clock. scale multiplies every delta passed to Advance
// (2 => the kitchen runs twice as fast as the ticker); non-positive values
// mean 1.
func New(scale float64) *Clock {
	if scale <= 0 {
		scale = 1
	}
	return &Clock{scale: scale}
}

// Advance moves the clock forward by one tick of dt (before scaling) and
// returns the scaled delta the simulation should use.
func (c *Clock) Advance(dt time.Duration) time.Duration {
	scaled := time.Duration(float64(dt) * c.scale)
	c.tick++
	c.now += scaled
	return scaled
}

// Now returns elapsed simulated time since the clock was created.
func (c *Clock) Now() time.Duration { return c.now }

// Tick returns the number of completed Advance calls.
func (c *Clock) Tick() uint64 { return c.tick }

// Scale returns the time scale.
func (c *Clock) Scale() float64 { return c.scale }

// Stamp formats the clock for log lines.
func (c *Clock) Stamp() string {
	d := c.now
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("t%06d %02d:%02d.%03d", c.tick, m, s, d/time.Millisecond)
}
