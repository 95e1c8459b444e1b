package main

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/lattice/config"
	"github.com/gogpu/lattice/frame"
	"github.com/gogpu/lattice/internal/host"
)

// runWindow opens a desktop window showing the driver's frames. It blocks
// until the window closes, Escape is pressed or ctx is cancelled.
func runWindow(ctx context.Context, w config.Window, d *frame.Driver, buf *host.Buffer) error {
	g := &game{ctx: ctx, driver: d, buf: buf}
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowSize(w.Width, w.Height)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type game struct {
	ctx    context.Context
	driver *frame.Driver
	buf    *host.Buffer
	img    *ebiten.Image
}

func (g *game) Update() error {
	if g.ctx.Err() != nil || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return g.driver.Frame(g.ctx)
}

func (g *game) Draw(screen *ebiten.Image) {
	w, h := g.buf.Size()
	if w == 0 || h == 0 {
		return
	}

	pix, fresh := g.buf.Take()
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(w, h)
		pix, fresh = g.buf.Pixels(), true
	}
	if fresh {
		g.img.WritePixels(pix)
	}
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.buf.Size()
}
