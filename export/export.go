// Package export writes rendered frames to numbered image files.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/gogpu/lattice"
	"github.com/gogpu/lattice/frame"
	"github.com/gogpu/lattice/render"
)

// Format is an output image encoding.
type Format string

// Supported formats.
const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// ParseFormat validates a format name as found in settings and flags.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case PNG, BMP, TIFF:
		return f, nil
	}
	return "", fmt.Errorf("export: unsupported format %q", name)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("export: unsupported format %q", f)
}

// Option configures a Writer.
type Option func(*Writer)

// WithScale resizes every frame by factor before encoding. Factors that are
// not positive are ignored.
func WithScale(factor float64) Option {
	return func(w *Writer) {
		if factor > 0 {
			w.scale = factor
		}
	}
}

// WithScaler sets the interpolation used by WithScale. The default is
// draw.CatmullRom.
func WithScaler(s draw.Scaler) Option {
	return func(w *Writer) {
		w.scaler = s
	}
}

// WithPattern sets the file name pattern; it receives the frame index.
// The default is "frame_%05d".
func WithPattern(pattern string) Option {
	return func(w *Writer) {
		w.pattern = pattern
	}
}

// Writer is a frame.Presenter that saves each frame to its own file.
type Writer struct {
	dir     string
	format  Format
	pattern string
	scale   float64
	scaler  draw.Scaler

	scaled  *image.NRGBA
	written int
	last    string
}

var _ frame.Presenter = (*Writer)(nil)

// NewWriter creates dir if needed and returns a Writer saving into it.
func NewWriter(dir string, format Format, opts ...Option) (*Writer, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	w := &Writer{
		dir:     dir,
		format:  format,
		pattern: "frame_%05d",
		scale:   1,
		scaler:  draw.CatmullRom,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the file a frame with the given index is written to.
func (w *Writer) Path(index int) string {
	return filepath.Join(w.dir, fmt.Sprintf(w.pattern, index)+w.format.Ext())
}

// Written returns the number of frames saved so far.
func (w *Writer) Written() int { return w.written }

// Last returns the path of the most recent file, or "" before the first.
func (w *Writer) Last() string { return w.last }

// Present encodes the target into the file for info.Index.
func (w *Writer) Present(info frame.Info, target *render.Target) error {
	img := w.resize(target.Image())
	path := w.Path(info.Index)

	f, err := os.Create(path) //nolint:gosec // output directory is user-provided
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := Encode(f, img, w.format); err != nil {
		_ = f.Close()
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	w.written++
	w.last = path
	lattice.Logger().Debug("export: frame written", "path", path, "time", info.Time)
	return nil
}

func (w *Writer) resize(src *image.NRGBA) image.Image {
	if w.scale == 1 {
		return src
	}
	b := src.Bounds()
	dw := max(int(float64(b.Dx())*w.scale+0.5), 1)
	dh := max(int(float64(b.Dy())*w.scale+0.5), 1)
	if w.scaled == nil || w.scaled.Rect.Dx() != dw || w.scaled.Rect.Dy() != dh {
		w.scaled = image.NewNRGBA(image.Rect(0, 0, dw, dh))
	}
	w.scaler.Scale(w.scaled, w.scaled.Bounds(), src, b, draw.Src, nil)
	return w.scaled
}
