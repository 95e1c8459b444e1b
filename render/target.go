// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"image/color"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/lattice"
)

// Target is a CPU-backed RGBA8 framebuffer.
//
// Pixel kernels address the target in window space with the origin at the
// bottom-left corner; the backing image keeps the usual top-down row order.
// Colors are stored unpremultiplied after clamping to [0, 1].
//
// Example:
//
//	target := render.NewTarget(640, 480)
//	rast.Draw(mgr.Active(), quad, target)
//	img := target.Image()
type Target struct {
	img *image.NRGBA
}

// NewTarget creates a target of the given size. Negative sizes are treated
// as zero.
func NewTarget(width, height int) *Target {
	return &Target{
		img: image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
	}
}

// Width returns the target width in pixels.
func (t *Target) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *Target) Height() int {
	return t.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (t *Target) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns direct access to the pixel data, 4 bytes per pixel.
func (t *Target) Pixels() []byte {
	return t.img.Pix
}

// Stride returns the number of bytes per row.
func (t *Target) Stride() int {
	return t.img.Stride
}

// Image returns the backing image. It shares memory with the target.
func (t *Target) Image() *image.NRGBA {
	return t.img
}

// Snapshot returns a copy of the current contents.
func (t *Target) Snapshot() *image.NRGBA {
	out := image.NewNRGBA(t.img.Rect)
	copy(out.Pix, t.img.Pix)
	return out
}

// Clear fills the target with c, clamping each component to [0, 1].
func (t *Target) Clear(c gputypes.Color) {
	px := lattice.RGBA{
		R: float32(c.R),
		G: float32(c.G),
		B: float32(c.B),
		A: float32(c.A),
	}.RGBA8()

	pix := t.img.Pix
	if len(pix) == 0 {
		return
	}
	pix[0], pix[1], pix[2], pix[3] = px.R, px.G, px.B, px.A
	// Doubling copy fills the buffer in log(n) passes.
	for filled := 4; filled < len(pix); filled *= 2 {
		copy(pix[filled:], pix[:filled])
	}
}

// Store writes c at window coordinates (x, y), counted from the bottom-left
// corner. Writes outside the target are ignored.
func (t *Target) Store(x, y int, c lattice.RGBA) {
	row := t.Height() - 1 - y
	if x < 0 || x >= t.Width() || row < 0 || y < 0 {
		return
	}
	t.storeRow(x, row, c.RGBA8())
}

func (t *Target) storeRow(x, row int, px color.NRGBA) {
	i := t.img.PixOffset(x, row)
	s := t.img.Pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = px.R, px.G, px.B, px.A
}

// At returns the stored color at window coordinates (x, y), counted from
// the bottom-left corner.
func (t *Target) At(x, y int) color.NRGBA {
	return t.img.NRGBAAt(x, t.Height()-1-y)
}

// Resize replaces the target with a cleared one of the new size.
func (t *Target) Resize(width, height int) {
	if width == t.Width() && height == t.Height() {
		return
	}
	t.img = image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}
