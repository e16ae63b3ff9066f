package sim

import (
	"sync"
	"time"
)

// Clock supplies simulated time to the engine.
type Clock interface {
	Now() time.Time
}

// SimulationClock compresses wall-clock time by a fixed multiplier.
//
// Formula: wallNow + (wallNow - start) * multiplier
//
// With multiplier 1 simulated time still runs at twice wall speed; the formula is kept
// literally because downstream consumers are tuned against it.
type SimulationClock struct {
	start      time.Time
	multiplier int
	wall       func() time.Time
}

// NewSimulationClock starts a clock at the current wall time.
func NewSimulationClock(multiplier int) *SimulationClock {
	return NewSimulationClockAt(time.Now(), multiplier, time.Now)
}

// NewSimulationClockAt builds a clock with an explicit start and wall-time source.
func NewSimulationClockAt(start time.Time, multiplier int, wall func() time.Time) *SimulationClock {
	return &SimulationClock{start: start, multiplier: multiplier, wall: wall}
}

// Now returns the current simulated time.
//
// The scaled offset is applied as whole seconds plus a nanosecond remainder, so it does
// not wrap when elapsed*multiplier exceeds the time.Duration range (about 292 years).
func (c *SimulationClock) Now() time.Time {
	now := c.wall()
	elapsed := now.Sub(c.start)
	m := int64(c.multiplier)
	secs := int64(elapsed/time.Second) * m
	nanos := time.Duration(int64(elapsed%time.Second) * m)
	shifted := now.Add(nanos)
	return time.Unix(shifted.Unix()+secs, int64(shifted.Nanosecond())).In(now.Location())
}

// Start returns the wall time the clock was started at.
func (c *SimulationClock) Start() time.Time {
	return c.start
}

// ManualClock is a Clock advanced explicitly, for tests and offline replays.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a ManualClock reading t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
