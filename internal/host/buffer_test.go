package host

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/lattice"
	"github.com/gogpu/lattice/frame"
	"github.com/gogpu/lattice/render"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer(3, 2)
	if w, h := b.Size(); w != 3 || h != 2 {
		t.Fatalf("Size() = %dx%d, want 3x2", w, h)
	}
	if len(b.Pixels()) != 24 {
		t.Fatalf("len(Pixels()) = %d, want 24", len(b.Pixels()))
	}
	for i := 3; i < 24; i += 4 {
		if b.Pixels()[i] != 0xff {
			t.Fatalf("alpha at %d = %d, want opaque black", i, b.Pixels()[i])
		}
	}
	if _, ok := b.Take(); ok {
		t.Error("Take() before Present should report no frame")
	}
}

func TestBuffer_Present(t *testing.T) {
	target := render.NewTarget(2, 2)
	target.Clear(gputypes.Color{})
	target.Store(1, 1, lattice.RGBA{R: 0.2, G: 0.4, B: 1, A: 0.5})

	b := NewBuffer(2, 2)
	if err := b.Present(frame.Info{Index: 7, Time: 1.25}, target); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	pix, ok := b.Take()
	if !ok {
		t.Fatal("Take() after Present reported no frame")
	}
	// Window (1,1) is the top-right pixel.
	want := []byte{51, 102, 255, 255}
	if got := pix[4:8]; string(got) != string(want) {
		t.Errorf("top-right = %v, want %v", got, want)
	}
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0xff {
			t.Errorf("alpha at %d = %d, want 255", i, pix[i])
		}
	}

	if _, ok := b.Take(); ok {
		t.Error("second Take() should report no new frame")
	}
	if b.Frames() != 1 || b.Info().Index != 7 || b.Info().Time != 1.25 {
		t.Errorf("Frames() = %d Info() = %+v", b.Frames(), b.Info())
	}
	if target.At(1, 1).A != 128 {
		t.Errorf("target alpha changed to %d", target.At(1, 1).A)
	}
}

func TestBuffer_FollowsTargetSize(t *testing.T) {
	b := NewBuffer(4, 4)
	if err := b.Present(frame.Info{}, render.NewTarget(5, 1)); err != nil {
		t.Fatal(err)
	}
	if w, h := b.Size(); w != 5 || h != 1 {
		t.Errorf("Size() = %dx%d, want 5x1", w, h)
	}
	if len(b.Pixels()) != 20 {
		t.Errorf("len(Pixels()) = %d, want 20", len(b.Pixels()))
	}
}
