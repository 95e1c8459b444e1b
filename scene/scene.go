// Package scene holds the stage sources of the lattice scene, binds their
// entry points to CPU kernels and builds the program every frame draws
// with.
package scene

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/lattice"
	"github.com/gogpu/lattice/pipeline"
	"github.com/gogpu/lattice/sdf"
)

//go:embed shaders/quad.wgsl
var quadSource string

//go:embed shaders/lattice.wgsl
var latticeSource string

// Entry point names of the two stages.
const (
	QuadEntry    = "quad_main"
	LatticeEntry = "lattice_main"
)

// QuadSource returns the position stage source.
func QuadSource() string { return quadSource }

// LatticeSource returns the pixel stage source.
func LatticeSource() string { return latticeSource }

// Build compiles and links the scene, fills in the scene constants for a
// viewport of width x height pixels and activates the program.
//
// Any compile or link failure is returned unchanged; it carries the
// diagnostic log and leaves mgr in its failed state.
func Build(mgr *pipeline.Manager, params sdf.Params, width, height int) (*pipeline.Program, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scene: invalid viewport %dx%d", width, height)
	}

	vs, err := mgr.CompileStage(quadSource, pipeline.Position)
	if err != nil {
		return nil, err
	}
	fs, err := mgr.CompileStage(latticeSource, pipeline.Pixel)
	if err != nil {
		return nil, err
	}
	prog, err := mgr.Link(vs, fs)
	if err != nil {
		return nil, err
	}

	Configure(mgr, prog, params, sdf.Viewport{Width: width, Height: height})
	if err := mgr.Activate(prog); err != nil {
		return nil, err
	}

	lattice.Logger().Info("scene: program ready",
		"program", prog.ID(), "width", width, "height", height, "steps", params.Steps)
	return prog, nil
}

// Configure writes the scene constants and the viewport size into prog.
// Call it again after the presentation surface changes size.
func Configure(mgr *pipeline.Manager, prog *pipeline.Program, params sdf.Params, vp sdf.Viewport) {
	set := func(name string, v ...float32) {
		mgr.ResolveSlot(prog, name).Set(v...)
	}
	set("resolution", float32(vp.Width), float32(vp.Height))
	set("rotation", params.Rotation[0], params.Rotation[1], params.Rotation[2])
	set("drift", params.Drift)
	set("shift", params.Shift)
	set("cell", params.Cell)
	set("radius", params.Radius)
	set("epsilon", params.Epsilon)
	set("steps", float32(params.Steps))
	set("base", params.Base)
	set("gradient", params.Gradient)
}
