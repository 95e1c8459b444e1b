package frame

import "time"

// Clock reports the seconds elapsed since the session started.
type Clock interface {
	Elapsed() float64
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() float64

// Elapsed calls f.
func (f ClockFunc) Elapsed() float64 { return f() }

// WallClock measures real time from its creation using the monotonic clock.
type WallClock struct {
	start time.Time
}

// NewWallClock starts a wall clock now.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// Elapsed returns the seconds since the clock was created.
func (c *WallClock) Elapsed() float64 {
	return time.Since(c.start).Seconds()
}

// StepClock advances by a fixed amount on every reading, so frame n sees
// n*Step seconds no matter how long rendering takes. Headless export uses
// it to produce the same frames on every run.
type StepClock struct {
	Step float64
	n    int
}

// NewStepClock returns a clock for the given frame rate. A non-positive
// rate freezes time at zero.
func NewStepClock(fps float64) *StepClock {
	if fps <= 0 {
		return &StepClock{}
	}
	return &StepClock{Step: 1 / fps}
}

// Elapsed returns the time of the next frame.
func (c *StepClock) Elapsed() float64 {
	t := float64(c.n) * c.Step
	c.n++
	return t
}

// FixedClock always reports the same time.
type FixedClock float64

// Elapsed returns c.
func (c FixedClock) Elapsed() float64 { return float64(c) }
