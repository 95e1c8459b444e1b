// Package config loads the lattice settings from a TOML file.
//
// Every key is optional; missing keys keep the values of Default. Unknown
// keys are an error so that typos do not go unnoticed.
//
//	[window]
//	width = 1280
//	height = 720
//
//	[scene]
//	drift = 2.5
//	rotation = [0.13, 0.2, 0.1]
//
//	[export]
//	format = "png"
//	frames = 120
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/lattice/sdf"
)

// Config is the complete set of runtime settings.
type Config struct {
	Window Window `toml:"window"`
	Scene  Scene  `toml:"scene"`
	Render Render `toml:"render"`
	Export Export `toml:"export"`
}

// Window describes the presentation surface.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Scene holds the tunable constants of the lattice formula.
type Scene struct {
	// angular rates for the (x,z), (y,z) and (x,y) planes, radians per second
	Rotation [3]float32 `toml:"rotation"`

	Drift     float32 `toml:"drift"`
	Shift     float32 `toml:"shift"`
	Cell      float32 `toml:"cell"`
	Radius    float32 `toml:"radius"`
	Epsilon   float32 `toml:"epsilon"`
	Steps     int     `toml:"steps"`
	Base      float32 `toml:"base"`
	Gradient  float32 `toml:"gradient"`
	SeedScale float32 `toml:"seed_scale"`
}

// Render configures the software rasterizer.
type Render struct {
	// shading goroutines; 0 uses GOMAXPROCS
	Workers int `toml:"workers"`
}

// Export configures headless rendering to image files.
type Export struct {
	Dir    string  `toml:"dir"`
	Format string  `toml:"format"`
	Frames int     `toml:"frames"`
	FPS    float64 `toml:"fps"`
	// output scale factor applied to every frame; 1 keeps the window size
	Scale float64 `toml:"scale"`
}

// Formats lists the supported export formats.
var Formats = []string{"png", "bmp", "tiff"}

// Default returns the settings of the reference scene.
func Default() Config {
	p := sdf.DefaultParams()
	return Config{
		Window: Window{
			Title:  "lattice",
			Width:  sdf.ReferenceViewport.Width,
			Height: sdf.ReferenceViewport.Height,
		},
		Scene: Scene{
			Rotation:  p.Rotation,
			Drift:     p.Drift,
			Shift:     p.Shift,
			Cell:      p.Cell,
			Radius:    p.Radius,
			Epsilon:   p.Epsilon,
			Steps:     p.Steps,
			Base:      p.Base,
			Gradient:  p.Gradient,
			SeedScale: p.SeedScale,
		},
		Export: Export{
			Dir:    "frames",
			Format: "png",
			Frames: 60,
			FPS:    30,
			Scale:  1,
		},
	}
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Marshal encodes c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks the settings for values the renderer cannot use.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Render.Workers < 0 {
		errs = append(errs, fmt.Errorf("render.workers must not be negative, got %d", c.Render.Workers))
	}
	if !validFormat(c.Export.Format) {
		errs = append(errs, fmt.Errorf("export.format %q is not one of %s", c.Export.Format, strings.Join(Formats, ", ")))
	}
	if c.Export.Frames < 0 {
		errs = append(errs, fmt.Errorf("export.frames must not be negative, got %d", c.Export.Frames))
	}
	if !(c.Export.FPS > 0) {
		errs = append(errs, fmt.Errorf("export.fps must be positive, got %v", c.Export.FPS))
	}
	if !(c.Export.Scale > 0) {
		errs = append(errs, fmt.Errorf("export.scale must be positive, got %v", c.Export.Scale))
	}
	return errors.Join(errs...)
}

func validFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Params converts the scene section to evaluator parameters.
func (c Config) Params() sdf.Params {
	s := c.Scene
	return sdf.Params{
		Rotation:  s.Rotation,
		Drift:     s.Drift,
		Shift:     s.Shift,
		Cell:      s.Cell,
		Radius:    s.Radius,
		Epsilon:   s.Epsilon,
		Steps:     s.Steps,
		Base:      s.Base,
		Gradient:  s.Gradient,
		SeedScale: s.SeedScale,
	}
}
