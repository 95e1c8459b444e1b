// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render rasterizes linked programs into a CPU render target.
//
// # Geometry
//
// A Quad holds the four corners of the full-screen quad as a triangle
// strip in clip space. Its vertex layout (one vec3<f32> at location 0)
// must match the position stage input of the program it is drawn with.
//
// # Rasterization
//
// Rasterizer.Draw runs the position kernel on every vertex, maps the
// result to window coordinates and shades each pixel whose center lies in
// a triangle exactly once, even where two triangles share an edge. Rows
// are split into bands and shaded on a worker pool.
//
// # Target
//
// Target is an RGBA8 surface. Window coordinates have their origin at the
// bottom-left corner, storage rows run top-down. Colors are clamped to
// [0, 1] on write.
//
// # Usage
//
//	target := render.NewTarget(640, 480)
//	rast := render.NewRasterizer()
//	defer rast.Close()
//
//	target.Clear(gputypes.Color{})
//	if err := rast.Draw(prog, render.NewQuad(), target); err != nil {
//	    return err
//	}
//	img := target.Image()
package render
