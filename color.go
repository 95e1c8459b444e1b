package lattice

import "image/color"

// RGBA is a floating point color as produced by a pixel kernel.
// Components are not clamped: kernels may return values above 1 and the
// render target clamps on write.
type RGBA struct {
	R, G, B, A float32
}

// Transparent is the background every frame is cleared to.
var Transparent = RGBA{}

// Clamped returns c with every component limited to [0, 1].
func (c RGBA) Clamped() RGBA {
	return RGBA{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: clamp01(c.A)}
}

// RGBA8 converts c to 8-bit non-premultiplied components, clamping first.
func (c RGBA) RGBA8() color.NRGBA {
	c = c.Clamped()
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

// Color converts c to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return c.RGBA8()
}

func clamp01(v float32) float32 {
	// NaN compares false both ways and ends up as 0.
	if v > 1 {
		return 1
	}
	if v >= 0 {
		return v
	}
	return 0
}

func to8(v float32) uint8 {
	return uint8(v*255 + 0.5)
}
