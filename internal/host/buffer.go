// Package host keeps the presented frames of a Driver in the form a window
// toolkit uploads: top-down RGBA bytes with every pixel opaque.
package host

import (
	"github.com/gogpu/lattice/frame"
	"github.com/gogpu/lattice/render"
)

// Buffer is a frame.Presenter holding the latest frame.
//
// Buffer is not safe for concurrent use. Window toolkits call update and
// draw callbacks from one goroutine, and the driver presents from the
// update callback.
type Buffer struct {
	pix    []byte
	width  int
	height int
	info   frame.Info
	fresh  bool
	frames int
}

var _ frame.Presenter = (*Buffer)(nil)

// NewBuffer returns an empty buffer sized width x height.
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{}
	b.resize(width, height)
	return b
}

func (b *Buffer) resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if b.width == width && b.height == height && b.pix != nil {
		return
	}
	b.width, b.height = width, height
	b.pix = make([]byte, 4*width*height)
	for i := 3; i < len(b.pix); i += 4 {
		b.pix[i] = 0xff
	}
}

// Size returns the dimensions of the last presented frame.
func (b *Buffer) Size() (width, height int) { return b.width, b.height }

// Frames returns the number of frames presented so far.
func (b *Buffer) Frames() int { return b.frames }

// Info returns the description of the last presented frame.
func (b *Buffer) Info() frame.Info { return b.info }

// Present copies the target and forces full opacity; the window surface
// has nothing behind it to blend with.
func (b *Buffer) Present(info frame.Info, target *render.Target) error {
	b.resize(target.Width(), target.Height())

	src, stride := target.Pixels(), target.Stride()
	row := 4 * b.width
	for y := 0; y < b.height; y++ {
		s := src[y*stride : y*stride+row]
		d := b.pix[y*row : (y+1)*row]
		copy(d, s)
		for i := 3; i < row; i += 4 {
			d[i] = 0xff
		}
	}

	b.info = info
	b.fresh = true
	b.frames++
	return nil
}

// Take returns the pixel bytes if a frame arrived since the previous call.
// The slice stays owned by the buffer and is overwritten by Present.
func (b *Buffer) Take() ([]byte, bool) {
	if !b.fresh {
		return nil, false
	}
	b.fresh = false
	return b.pix, true
}

// Pixels returns the bytes of the last presented frame.
func (b *Buffer) Pixels() []byte { return b.pix }
