package sdf

import (
	"fmt"

	"github.com/gogpu/lattice"
)

// Viewport is the size of the presentation surface in pixels.
type Viewport struct {
	Width, Height int
}

// ReferenceViewport is the surface size the scene was framed for.
var ReferenceViewport = Viewport{Width: 640, Height: 480}

// Params holds the constants of the lattice formula. The formula itself is
// fixed; only these numbers may be tuned.
type Params struct {
	// Rotation holds the angular rates, in radians per second, applied to
	// the (x,z), (y,z) and (x,y) coordinate pairs, in that order.
	Rotation [3]float32

	// Drift is how fast the camera travels along z, in units per second.
	Drift float32

	// Shift moves the framing off-center along x.
	Shift float32

	// Cell is the edge length of one lattice cell.
	Cell float32

	// Radius is subtracted from the folded box distance; it sets how far
	// the frame bars reach into the cell.
	Radius float32

	// Epsilon is the hit threshold of the distance estimate.
	Epsilon float32

	// Steps is the marching budget per pixel.
	Steps int

	// Base and Gradient shape the hit color: i*i*(Base + Gradient*t).
	Base     float32
	Gradient float32

	// SeedScale multiplies the cell index before the per-cell sine hash.
	SeedScale float32
}

// DefaultParams returns the constants of the reference scene.
func DefaultParams() Params {
	return Params{
		Rotation:  [3]float32{0.13, 0.2, 0.1},
		Drift:     5,
		Shift:     0.4,
		Cell:      8,
		Radius:    1.2,
		Epsilon:   0.01,
		Steps:     100,
		Base:      1.7,
		Gradient:  0.02,
		SeedScale: 78,
	}
}

// Static returns p with rotation and drift disabled, so the rendered image
// no longer depends on time.
func (p Params) Static() Params {
	p.Rotation = [3]float32{}
	p.Drift = 0
	return p
}

// Validate reports whether p can drive the marcher.
func (p Params) Validate() error {
	switch {
	case p.Steps <= 0:
		return fmt.Errorf("sdf: step budget must be positive, got %d", p.Steps)
	case !(p.Cell > 0):
		return fmt.Errorf("sdf: cell size must be positive, got %v", p.Cell)
	case !(p.Epsilon > 0):
		return fmt.Errorf("sdf: hit threshold must be positive, got %v", p.Epsilon)
	}
	return nil
}

// Evaluate shades one pixel of the reference scene. See Params.Evaluate.
func Evaluate(x, y float32, vp Viewport, time float32) (lattice.RGBA, bool) {
	return defaultParams.Evaluate(x, y, vp, time)
}

var defaultParams = DefaultParams()

// Ray returns the starting point and the marching direction for the screen
// coordinate (x, y). The coordinate origin is the bottom-left corner of the
// viewport; pixel centers sit at half-integers.
//
// The direction is the normalized, shifted and rotated coordinate itself;
// the origin is the same point pushed along z by Drift*time.
func (p Params) Ray(x, y float32, vp Viewport, time float32) (origin, dir Vec4) {
	w, h := float32(vp.Width), float32(vp.Height)
	// Height divides every lane except z, which takes the width.
	q := V4(x, y, 1, 1).Div(V4(h, h, w, h)).AddScalar(-0.5)
	q.X -= p.Shift

	q.X, q.Z = rotate(q.X, q.Z, p.Rotation[0]*time)
	q.Y, q.Z = rotate(q.Y, q.Z, p.Rotation[1]*time)
	q.X, q.Y = rotate(q.X, q.Y, p.Rotation[2]*time)

	dir = q
	q.Z += p.Drift * time
	return q, dir
}

// Evaluate sphere traces the lattice for the screen coordinate (x, y) at
// the given time. It returns the hit color and true, or the transparent
// background and false when the step budget runs out first.
//
// Evaluate is a pure function of its arguments and safe for concurrent use.
func (p Params) Evaluate(x, y float32, vp Viewport, time float32) (lattice.RGBA, bool) {
	pos, dir := p.Ray(x, y, vp, time)
	for k := 0; k < p.Steps; k++ {
		local, x := p.distance(pos)
		if x < p.Epsilon {
			return p.HitColor(p.stepIndex(k), local), true
		}
		pos = pos.Sub(dir.Scale(x))
	}
	return lattice.Transparent, false
}

// HitColor returns i*i*(Base + Gradient*t) for a hit at step index i with
// folded local coordinate t. The fourth lane becomes alpha.
func (p Params) HitColor(i float32, t Vec4) lattice.RGBA {
	c := t.Scale(p.Gradient).AddScalar(p.Base).Scale(i * i)
	return lattice.RGBA{R: c.X, G: c.Y, B: c.Z, A: c.W}
}

// stepIndex maps the k-th step to i, running from 1 down towards 0.
func (p Params) stepIndex(k int) float32 {
	return float32(p.Steps-k) / float32(p.Steps)
}

// Step records one iteration of the marcher.
type Step struct {
	// I is the step index, 1 on the first step, decreasing by 1/Steps.
	I float32

	// P is the position before the step was taken.
	P Vec4

	// Cell is floor(P/Cell), the index of the lattice cell holding P.
	Cell Vec4

	// Seed is the per-cell pseudo-random vector sin(SeedScale*(u+u.yzxw)).
	// The distance estimate does not read it.
	Seed Vec4

	// Local is the folded coordinate |mod(P, Cell) - Cell/2|.
	Local Vec4

	// X is the distance estimate at P.
	X float32
}

// distance returns the folded local coordinate and the distance estimate
// at pos.
func (p Params) distance(pos Vec4) (Vec4, float32) {
	local := pos.Mod(p.Cell).AddScalar(-p.Cell / 2).Abs()
	m := local.Max(local.YZXW())
	return local, max(local.X, m.Y) - p.Radius
}

// probe evaluates the distance field at pos and records the cell data the
// estimate is derived from.
func (p Params) probe(pos Vec4) Step {
	cell := pos.Div(Splat(p.Cell)).Floor()
	seed := cell.Add(cell.YZXW()).Scale(p.SeedScale).Sin()
	local, x := p.distance(pos)
	return Step{P: pos, Cell: cell, Seed: seed, Local: local, X: x}
}

// Trace is the full record of one pixel's march.
type Trace struct {
	Origin Vec4
	Dir    Vec4
	Steps  []Step
	Hit    bool
	Color  lattice.RGBA
}

// Trace runs the same march as Evaluate and records every step. It is
// meant for diagnostics; Evaluate does not allocate.
func (p Params) Trace(x, y float32, vp Viewport, time float32) Trace {
	origin, dir := p.Ray(x, y, vp, time)
	tr := Trace{Origin: origin, Dir: dir, Steps: make([]Step, 0, max(p.Steps, 0))}

	pos := origin
	for k := 0; k < p.Steps; k++ {
		s := p.probe(pos)
		s.I = p.stepIndex(k)
		tr.Steps = append(tr.Steps, s)
		if s.X < p.Epsilon {
			tr.Hit = true
			tr.Color = p.HitColor(s.I, s.Local)
			return tr
		}
		pos = pos.Sub(dir.Scale(s.X))
	}
	return tr
}
