// Package frame drives the per-frame loop: read the clock, publish the time
// to the active program, clear, draw the quad and present the result.
package frame

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/lattice"
	"github.com/gogpu/lattice/pipeline"
	"github.com/gogpu/lattice/render"
)

// TimeSlot is the parameter the driver writes the elapsed time to.
const TimeSlot = "time"

// ErrNoActiveProgram is returned by Frame when the manager has no active
// program to draw with.
var ErrNoActiveProgram = errors.New("frame: no active program")

// Info describes a finished frame.
type Info struct {
	// Index counts frames from 0.
	Index int
	// Time is the clamped elapsed time the frame was rendered at.
	Time float64
}

// Presenter receives every finished frame. The target is only valid for
// the duration of the call.
type Presenter interface {
	Present(info Info, target *render.Target) error
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(info Info, target *render.Target) error

// Present calls f.
func (f PresenterFunc) Present(info Info, target *render.Target) error { return f(info, target) }

// Discard is a Presenter that drops every frame.
var Discard Presenter = PresenterFunc(func(Info, *render.Target) error { return nil })

// Option configures a Driver.
type Option func(*Driver)

// WithClock sets the time source. The default is a WallClock started by
// NewDriver.
func WithClock(c Clock) Option {
	return func(d *Driver) {
		d.clock = c
	}
}

// WithBackground sets the clear color. The default is transparent black.
func WithBackground(c gputypes.Color) Option {
	return func(d *Driver) {
		d.background = c
	}
}

// WithQuad replaces the geometry drawn every frame.
func WithQuad(q *render.Quad) Option {
	return func(d *Driver) {
		d.quad = q
	}
}

// Driver renders frames with the active program of a Manager.
//
// Driver is not safe for concurrent use; the host calls Frame or Run from
// one goroutine.
type Driver struct {
	mgr        *pipeline.Manager
	rast       *render.Rasterizer
	target     *render.Target
	presenter  Presenter
	clock      Clock
	quad       *render.Quad
	background gputypes.Color

	frames  int
	last    float64
	started bool

	// time slot of the program it was resolved for
	slot     pipeline.Slot
	slotProg *pipeline.Program
}

// NewDriver creates a driver. A nil presenter discards frames.
func NewDriver(mgr *pipeline.Manager, rast *render.Rasterizer, target *render.Target, presenter Presenter, opts ...Option) *Driver {
	if presenter == nil {
		presenter = Discard
	}
	d := &Driver{
		mgr:       mgr,
		rast:      rast,
		target:    target,
		presenter: presenter,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.clock == nil {
		d.clock = NewWallClock()
	}
	if d.quad == nil {
		d.quad = render.NewQuad()
	}
	return d
}

// Frames returns the number of frames rendered so far.
func (d *Driver) Frames() int { return d.frames }

// Time returns the time of the last rendered frame.
func (d *Driver) Time() float64 { return d.last }

// Target returns the render target.
func (d *Driver) Target() *render.Target { return d.target }

// Frame renders and presents one frame.
func (d *Driver) Frame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prog := d.mgr.Active()
	if prog == nil {
		return ErrNoActiveProgram
	}

	t := d.tick()
	if prog != d.slotProg {
		d.slot = d.mgr.ResolveSlot(prog, TimeSlot)
		d.slotProg = prog
	}
	d.slot.Set(float32(t))

	d.target.Clear(d.background)
	if err := d.rast.Draw(prog, d.quad, d.target); err != nil {
		return fmt.Errorf("frame %d: draw: %w", d.frames, err)
	}

	info := Info{Index: d.frames, Time: t}
	if err := d.presenter.Present(info, d.target); err != nil {
		return fmt.Errorf("frame %d: present: %w", d.frames, err)
	}
	d.frames++
	return nil
}

// tick reads the clock and keeps time from running backwards.
func (d *Driver) tick() float64 {
	t := d.clock.Elapsed()
	switch {
	case t != t:
		lattice.Logger().Warn("frame: clock returned NaN", "last", d.last)
		t = d.last
	case d.started && t < d.last:
		lattice.Logger().Warn("frame: clock stepped backwards", "from", d.last, "to", t)
		t = d.last
	}
	d.last = t
	d.started = true
	return t
}

// Run renders frames until ctx is cancelled or a frame fails. Cancellation
// is a normal stop and returns nil.
func (d *Driver) Run(ctx context.Context) error {
	lattice.Logger().Info("frame: loop started",
		"width", d.target.Width(), "height", d.target.Height())
	for {
		err := d.Frame(ctx)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			lattice.Logger().Info("frame: loop stopped", "frames", d.frames, "time", d.last)
			return nil
		}
		return err
	}
}
