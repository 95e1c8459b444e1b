package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/lattice"
	"github.com/gogpu/lattice/frame"
	"github.com/gogpu/lattice/render"
)

// testTarget returns a 4x2 target with a red lower-left pixel on a gray
// background.
func testTarget() *render.Target {
	t := render.NewTarget(4, 2)
	t.Clear(gputypes.Color{R: 0.5, G: 0.5, B: 0.5, A: 1})
	t.Store(0, 0, lattice.RGBA{R: 1, A: 1})
	return t
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"png", PNG, false},
		{"bmp", BMP, false},
		{"tiff", TIFF, false},
		{"gif", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestWriter_Formats(t *testing.T) {
	decoders := map[Format]func([]byte) (image.Image, error){
		PNG:  func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) },
		BMP:  func(b []byte) (image.Image, error) { return bmp.Decode(bytes.NewReader(b)) },
		TIFF: func(b []byte) (image.Image, error) { return tiff.Decode(bytes.NewReader(b)) },
	}

	for format, decode := range decoders {
		t.Run(string(format), func(t *testing.T) {
			w, err := NewWriter(t.TempDir(), format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			if err := w.Present(frame.Info{Index: 3}, testTarget()); err != nil {
				t.Fatalf("Present() error = %v", err)
			}

			if w.Written() != 1 || w.Last() != w.Path(3) {
				t.Errorf("Written() = %d Last() = %q", w.Written(), w.Last())
			}
			if filepath.Base(w.Last()) != "frame_00003"+format.Ext() {
				t.Errorf("file name = %q", filepath.Base(w.Last()))
			}

			data, err := os.ReadFile(w.Last())
			if err != nil {
				t.Fatal(err)
			}
			img, err := decode(data)
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
				t.Fatalf("bounds = %v, want 4x2", img.Bounds())
			}
			// Window row 0 is the bottom image row.
			r, g, _, a := img.At(0, 1).RGBA()
			if r>>8 != 255 || g>>8 != 0 || a>>8 != 255 {
				t.Errorf("lower-left pixel = %v", img.At(0, 1))
			}
			r, _, _, _ = img.At(3, 0).RGBA()
			if r>>8 != 128 {
				t.Errorf("background red = %d, want 128", r>>8)
			}
		})
	}
}

func TestWriter_Scale(t *testing.T) {
	w, err := NewWriter(t.TempDir(), PNG, WithScale(2), WithScaler(draw.NearestNeighbor))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Present(frame.Info{}, testTarget()); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	f, err := os.Open(w.Last())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = f.Close() })
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Fatalf("bounds = %v, want 8x4", img.Bounds())
	}
	want := color.NRGBAModel.Convert(color.NRGBA{R: 255, A: 255})
	for _, p := range []image.Point{{0, 2}, {1, 2}, {0, 3}, {1, 3}} {
		if got := color.NRGBAModel.Convert(img.At(p.X, p.Y)); got != want {
			t.Errorf("pixel %v = %v, want %v", p, got, want)
		}
	}
}

func TestWriter_Pattern(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w, err := NewWriter(dir, BMP, WithPattern("shot-%d"))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if got, want := w.Path(12), filepath.Join(dir, "shot-12.bmp"); got != want {
		t.Errorf("Path(12) = %q, want %q", got, want)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("output directory not created: %v", err)
	}
}

func TestNewWriter_BadFormat(t *testing.T) {
	if _, err := NewWriter(t.TempDir(), "jpeg"); err == nil {
		t.Error("NewWriter() error = nil for an unsupported format")
	}
}

func TestWriter_PresentError(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, PNG)
	if err != nil {
		t.Fatal(err)
	}
	// A directory where the file should go makes Create fail.
	if err := os.Mkdir(w.Path(0), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := w.Present(frame.Info{}, testTarget()); err == nil {
		t.Error("Present() error = nil")
	}
	if w.Written() != 0 {
		t.Errorf("Written() = %d, want 0", w.Written())
	}
}
