// Command lattice renders the animated box-frame lattice, either into a
// desktop window or headless into numbered image files.
//
// Usage:
//
//	lattice [-config lattice.toml] [-v]
//	lattice -headless -frames 120 -fps 30 -out frames -format png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"

	"github.com/gogpu/lattice"
	"github.com/gogpu/lattice/config"
	"github.com/gogpu/lattice/export"
	"github.com/gogpu/lattice/frame"
	"github.com/gogpu/lattice/internal/host"
	"github.com/gogpu/lattice/pipeline"
	"github.com/gogpu/lattice/render"
	"github.com/gogpu/lattice/scene"
)

type flags struct {
	config      string
	headless    bool
	frames      int
	fps         float64
	out         string
	format      string
	scale       float64
	workers     int
	verbose     bool
	printConfig bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.config, "config", "", "TOML settings file")
	flag.BoolVar(&f.headless, "headless", false, "render to image files instead of a window")
	flag.IntVar(&f.frames, "frames", 0, "number of frames to export (headless)")
	flag.Float64Var(&f.fps, "fps", 0, "animation rate of exported frames (headless)")
	flag.StringVar(&f.out, "out", "", "output directory (headless)")
	flag.StringVar(&f.format, "format", "", "output format: png, bmp or tiff (headless)")
	flag.Float64Var(&f.scale, "scale", 0, "output scale factor (headless)")
	flag.IntVar(&f.workers, "workers", -1, "shading goroutines, 0 for one per CPU")
	flag.BoolVar(&f.verbose, "v", false, "verbose logging")
	flag.BoolVar(&f.printConfig, "print-config", false, "print the effective settings and exit")
	flag.Parse()
	return f
}

// settings loads the config file and applies the flags that were set.
func settings(f flags) (config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "frames":
			cfg.Export.Frames = f.frames
		case "fps":
			cfg.Export.FPS = f.fps
		case "out":
			cfg.Export.Dir = f.out
		case "format":
			cfg.Export.Format = f.format
		case "scale":
			cfg.Export.Scale = f.scale
		case "workers":
			cfg.Render.Workers = f.workers
		}
	})
	return cfg, cfg.Validate()
}

func main() {
	f := parseFlags()
	out := termenv.NewOutput(os.Stderr)

	if err := run(f, out); err != nil {
		report(out, err)
		os.Exit(1)
	}
}

func run(f flags, out *termenv.Output) error {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	lattice.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := settings(f)
	if err != nil {
		return err
	}
	if f.printConfig {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mgr := pipeline.NewManager()
	defer mgr.Close()

	w, h := cfg.Window.Width, cfg.Window.Height
	if _, err := scene.Build(mgr, cfg.Params(), w, h); err != nil {
		return err
	}

	rast := render.NewRasterizer(render.WithWorkers(cfg.Render.Workers))
	defer rast.Close()
	target := render.NewTarget(w, h)

	if f.headless {
		return runHeadless(ctx, cfg, mgr, rast, target, out)
	}

	buf := host.NewBuffer(w, h)
	d := frame.NewDriver(mgr, rast, target, buf)
	return runWindow(ctx, cfg.Window, d, buf)
}

func runHeadless(ctx context.Context, cfg config.Config, mgr *pipeline.Manager,
	rast *render.Rasterizer, target *render.Target, out *termenv.Output,
) error {
	e := cfg.Export
	format, err := export.ParseFormat(e.Format)
	if err != nil {
		return err
	}
	writer, err := export.NewWriter(e.Dir, format, export.WithScale(e.Scale))
	if err != nil {
		return err
	}

	d := frame.NewDriver(mgr, rast, target, writer, frame.WithClock(frame.NewStepClock(e.FPS)))

	start := time.Now()
	pb := progressbar.Default(int64(e.Frames), "rendering")
	defer pb.Close()

	for range e.Frames {
		if err := d.Frame(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			return err
		}
		_ = pb.Add(1)
	}
	_ = pb.Finish()

	done := out.String(fmt.Sprintf("wrote %d frames", writer.Written())).Foreground(out.Color("2")).Bold()
	fmt.Fprintf(out, "%s to %s in %v\n", done, e.Dir, time.Since(start).Round(time.Millisecond))
	return nil
}

// report prints err, followed by the full diagnostic log of a rejected
// stage or program.
func report(out *termenv.Output, err error) {
	label := out.String("error:").Foreground(out.Color("1")).Bold()

	var (
		ce *pipeline.CompileError
		le *pipeline.LinkError
	)
	switch {
	case errors.As(err, &ce):
		fmt.Fprintf(out, "%s %s stage failed to compile\n%s\n", label, ce.Kind, out.String(ce.Log).Faint())
	case errors.As(err, &le):
		fmt.Fprintf(out, "%s program failed to link\n%s\n", label, out.String(le.Log).Faint())
	default:
		fmt.Fprintf(out, "%s %v\n", label, err)
	}
}
