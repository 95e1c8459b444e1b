// Package lattice renders an endlessly drifting lattice of hollow boxes by
// sphere tracing a repeated distance field once per pixel per frame.
//
// # Overview
//
// The module is split the way a small shading pipeline is split:
//
//   - sdf: the distance-field evaluator, a pure function of
//     (screen coordinate, viewport, time) returning a color
//   - pipeline: compiles WGSL stages with naga, links them into a Program,
//     resolves named parameter slots and tracks the active Program
//   - render: the full-screen quad, the CPU render target and the
//     rasterizer that runs pixel kernels on a worker pool
//   - frame: the per-frame driver (clock, time slot, clear, draw, present)
//   - scene: the stage sources and the kernels bound to their entry points
//   - config: TOML settings for the window, the scene and the exporter
//   - export: a frame presenter writing PNG, BMP or TIFF files
//
// The lattice command (cmd/lattice) shows the frames in a window, or
// writes them to disk with -headless.
//
// The root package only carries what every sub-package shares: the
// module logger and the floating point color type.
//
// # Quick Start
//
//	mgr := pipeline.NewManager()
//	if _, err := scene.Build(mgr, sdf.DefaultParams(), 640, 480); err != nil {
//	    log.Fatal(err)
//	}
//	target := render.NewTarget(640, 480)
//	drv := frame.NewDriver(mgr, render.NewRasterizer(), target, sink)
//	_ = drv.Run(ctx)
//
// # Coordinate System
//
// Screen coordinates follow the shading convention used by the pixel
// stage: origin at the bottom-left corner, pixel centers at half-integers.
// Target rows are stored top-down, the rasterizer flips between the two.
package lattice

// Version is the current version of the module.
const Version = "0.1.0"
