package scene

import (
	"github.com/gogpu/lattice"
	"github.com/gogpu/lattice/pipeline"
	"github.com/gogpu/lattice/sdf"
)

func init() {
	pipeline.RegisterPosition(QuadEntry, quadKernel)
	pipeline.RegisterPixel(LatticeEntry, latticeKernel)
}

func quadKernel(pipeline.Layout) pipeline.PositionFunc {
	return func(v pipeline.Vertex, _ pipeline.Uniforms) [4]float32 {
		return [4]float32{v.Pos[0], v.Pos[1], v.Pos[2], 1}
	}
}

// latticeLayout holds the uniform locations the lattice kernel reads.
type latticeLayout struct {
	time       int
	resolution int
	rotation   int
	drift      int
	shift      int
	cell       int
	radius     int
	epsilon    int
	steps      int
	base       int
	gradient   int
}

func locate(l pipeline.Layout) latticeLayout {
	return latticeLayout{
		time:       l.Location("time"),
		resolution: l.Location("resolution"),
		rotation:   l.Location("rotation"),
		drift:      l.Location("drift"),
		shift:      l.Location("shift"),
		cell:       l.Location("cell"),
		radius:     l.Location("radius"),
		epsilon:    l.Location("epsilon"),
		steps:      l.Location("steps"),
		base:       l.Location("base"),
		gradient:   l.Location("gradient"),
	}
}

// vector reads component i of the vector stored at loc.
func vector(u pipeline.Uniforms, loc, i int) float32 {
	if loc < 0 {
		return 0
	}
	return u.Float(loc + i)
}

func (ll latticeLayout) params(u pipeline.Uniforms) (sdf.Params, sdf.Viewport) {
	p := sdf.Params{
		Rotation: [3]float32{vector(u, ll.rotation, 0), vector(u, ll.rotation, 1), vector(u, ll.rotation, 2)},
		Drift:    u.Float(ll.drift),
		Shift:    u.Float(ll.shift),
		Cell:     u.Float(ll.cell),
		Radius:   u.Float(ll.radius),
		Epsilon:  u.Float(ll.epsilon),
		Steps:    int(u.Float(ll.steps)),
		Base:     u.Float(ll.base),
		Gradient: u.Float(ll.gradient),
	}
	vp := sdf.Viewport{
		Width:  int(vector(u, ll.resolution, 0)),
		Height: int(vector(u, ll.resolution, 1)),
	}
	return p, vp
}

// latticeKernel runs the distance field evaluator for every fragment.
func latticeKernel(l pipeline.Layout) pipeline.PixelFunc {
	ll := locate(l)
	return func(f pipeline.Fragment, u pipeline.Uniforms) (lattice.RGBA, bool) {
		p, vp := ll.params(u)
		if vp.Width <= 0 || vp.Height <= 0 {
			return lattice.Transparent, false
		}
		return p.Evaluate(f.X, f.Y, vp, u.Float(ll.time))
	}
}
