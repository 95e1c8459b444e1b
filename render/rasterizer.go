// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gogpu/lattice"
	"github.com/gogpu/lattice/internal/parallel"
	"github.com/gogpu/lattice/pipeline"
)

// ErrNoProgram is returned by Draw when there is no linked program to run.
var ErrNoProgram = errors.New("render: no linked program")

// Option configures a Rasterizer.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers sets the number of shading goroutines. Zero or a negative
// value uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Rasterizer draws a quad with a linked program into a Target. Pixel
// shading is split into row bands on a worker pool; every band reads the
// same uniform snapshot, taken once per draw.
type Rasterizer struct {
	pool *parallel.Pool
}

// NewRasterizer creates a rasterizer and starts its workers.
func NewRasterizer(opts ...Option) *Rasterizer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Rasterizer{pool: parallel.NewPool(o.workers)}
}

// Workers returns the number of shading goroutines.
func (r *Rasterizer) Workers() int { return r.pool.Workers() }

// Close stops the workers. Draw keeps working after Close, on the
// calling goroutine.
func (r *Rasterizer) Close() { r.pool.Close() }

// Draw covers the pixels of target inside q, as transformed by the
// program's position kernel, and stores what its pixel kernel returns.
// Pixels the kernel leaves unwritten keep their current value.
func (r *Rasterizer) Draw(prog *pipeline.Program, q *Quad, target *Target) error {
	if !prog.Linked() {
		return ErrNoProgram
	}
	if err := checkLayout(prog, q); err != nil {
		return err
	}

	w, h := target.Width(), target.Height()
	if w == 0 || h == 0 {
		return nil
	}

	snap := prog.Snapshot()
	tris := r.setup(prog, q, snap, float32(w), float32(h))
	if len(tris) == 0 {
		return nil
	}

	box := tris[0].bounds()
	for _, t := range tris[1:] {
		box = box.union(t.bounds())
	}
	box = box.clip(w, h)
	if box.empty() {
		return nil
	}

	// Frames are not cancellable once started.
	return r.pool.Rows(context.Background(), box.y1-box.y0, func(b parallel.Band) {
		for y := box.y0 + b.Y0; y < box.y0+b.Y1; y++ {
			py := float32(y) + 0.5
			for x := box.x0; x < box.x1; x++ {
				px := float32(x) + 0.5
				if !covered(tris, px, py) {
					continue
				}
				if c, ok := prog.Shade(pipeline.Fragment{X: px, Y: py}, snap); ok {
					target.Store(x, y, c)
				}
			}
		}
	})
}

// checkLayout verifies that every vertex input of the program is fed by an
// attribute of the quad layout with a matching format.
func checkLayout(prog *pipeline.Program, q *Quad) error {
	layout := q.Layout()
	for _, a := range prog.Attributes() {
		want, ok := formatFor(a.Type)
		if !ok {
			return fmt.Errorf("render: vertex input %q has unsupported type %s", a.Name, a.Type)
		}
		found := false
		for _, la := range layout.Attributes {
			if int(la.ShaderLocation) != a.Location {
				continue
			}
			if la.Format != want {
				return fmt.Errorf("render: vertex input %q at location %d: layout format does not match %s",
					a.Name, a.Location, a.Type)
			}
			found = true
		}
		if !found {
			return fmt.Errorf("render: vertex input %q at location %d is not fed by the quad", a.Name, a.Location)
		}
	}
	return nil
}

// triangle is a strip triangle in window space, normalized to
// counter-clockwise winding.
type triangle struct {
	x, y [3]float32
}

func (r *Rasterizer) setup(prog *pipeline.Program, q *Quad, snap pipeline.Uniforms, w, h float32) []triangle {
	verts := q.Vertices()
	win := make([][2]float32, len(verts))
	valid := make([]bool, len(verts))
	for i, v := range verts {
		clip := prog.Position(v, snap)
		if clip[3] <= 0 {
			continue
		}
		win[i] = [2]float32{
			(clip[0]/clip[3] + 1) * 0.5 * w,
			(clip[1]/clip[3] + 1) * 0.5 * h,
		}
		valid[i] = true
	}

	var out []triangle
	for _, idx := range triangles(len(verts)) {
		if !valid[idx[0]] || !valid[idx[1]] || !valid[idx[2]] {
			lattice.Logger().Debug("render: triangle behind the eye skipped")
			continue
		}
		t := triangle{
			x: [3]float32{win[idx[0]][0], win[idx[1]][0], win[idx[2]][0]},
			y: [3]float32{win[idx[0]][1], win[idx[1]][1], win[idx[2]][1]},
		}
		area := edge(t.x[0], t.y[0], t.x[1], t.y[1], t.x[2], t.y[2])
		if area == 0 {
			continue
		}
		if area < 0 {
			t.x[1], t.x[2] = t.x[2], t.x[1]
			t.y[1], t.y[2] = t.y[2], t.y[1]
		}
		out = append(out, t)
	}
	return out
}

// edge is twice the signed area of (a, b, c).
func edge(ax, ay, bx, by, cx, cy float32) float32 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

func (t triangle) contains(px, py float32) bool {
	return edge(t.x[0], t.y[0], t.x[1], t.y[1], px, py) >= 0 &&
		edge(t.x[1], t.y[1], t.x[2], t.y[2], px, py) >= 0 &&
		edge(t.x[2], t.y[2], t.x[0], t.y[0], px, py) >= 0
}

// covered reports whether any triangle contains the point. A pixel on the
// shared diagonal is shaded once.
func covered(tris []triangle, px, py float32) bool {
	for _, t := range tris {
		if t.contains(px, py) {
			return true
		}
	}
	return false
}

// rect is a pixel rectangle [x0, x1) x [y0, y1).
type rect struct {
	x0, y0, x1, y1 int
}

func (t triangle) bounds() rect {
	minX, maxX := t.x[0], t.x[0]
	minY, maxY := t.y[0], t.y[0]
	for i := 1; i < 3; i++ {
		minX, maxX = min(minX, t.x[i]), max(maxX, t.x[i])
		minY, maxY = min(minY, t.y[i]), max(maxY, t.y[i])
	}
	return rect{
		x0: int(math32.Floor(minX)),
		y0: int(math32.Floor(minY)),
		x1: int(math32.Ceil(maxX)),
		y1: int(math32.Ceil(maxY)),
	}
}

func (r rect) union(o rect) rect {
	return rect{min(r.x0, o.x0), min(r.y0, o.y0), max(r.x1, o.x1), max(r.y1, o.y1)}
}

func (r rect) clip(w, h int) rect {
	return rect{max(r.x0, 0), max(r.y0, 0), min(r.x1, w), min(r.y1, h)}
}

func (r rect) empty() bool { return r.x0 >= r.x1 || r.y0 >= r.y1 }
