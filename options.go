package beany

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/beany/internal/frame"
)

// Default window and asset settings.
const (
	DefaultWidth        = 800
	DefaultHeight       = 600
	DefaultTitle        = "WebGPU Beany Renderer"
	DefaultShaderPath   = "assets/shaders/triangle.wgsl"
	DefaultGeometryPath = "assets/geometry/triangle.txt"
)

// MissPolicy decides what the main loop does when the surface keeps
// failing to deliver frames.
type MissPolicy = frame.MissPolicy

const (
	// MissPolicyExit ends the main loop after too many consecutive misses.
	MissPolicyExit = frame.MissPolicyExit
	// MissPolicyReconfigure reconfigures the surface and keeps going.
	MissPolicyReconfigure = frame.MissPolicyReconfigure
)

// Option configures an Application during creation.
//
// Example:
//
//	app := beany.New(
//	    beany.WithSize(1280, 720),
//	    beany.WithClearColorName("cornflowerblue"),
//	)
type Option func(*config)

// config holds the settings collected from options.
type config struct {
	width, height int
	title         string
	resizable     bool

	shaderPath   string
	geometryPath string

	clear gputypes.Color
	power gputypes.PowerPreference

	missPolicy MissPolicy
	maxMisses  int

	logger *slog.Logger

	// err is the first invalid option, reported by Init.
	err error
}

func defaultConfig() config {
	return config{
		width:        DefaultWidth,
		height:       DefaultHeight,
		title:        DefaultTitle,
		shaderPath:   DefaultShaderPath,
		geometryPath: DefaultGeometryPath,
		clear:        gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		power:        gputypes.PowerPreferenceHighPerformance,
		missPolicy:   MissPolicyExit,
		maxMisses:    frame.DefaultMaxMisses,
	}
}

func (c *config) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// WithSize sets the initial window size in screen coordinates.
// Non-positive values are rejected by Init.
func WithSize(width, height int) Option {
	return func(c *config) {
		if width <= 0 || height <= 0 {
			c.fail(fmt.Errorf("beany: invalid window size %dx%d", width, height))
			return
		}
		c.width, c.height = width, height
	}
}

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithResizable allows the user to resize the window. The surface follows
// the framebuffer size.
func WithResizable(resizable bool) Option {
	return func(c *config) {
		c.resizable = resizable
	}
}

// WithShaderPath sets the WGSL source file.
func WithShaderPath(path string) Option {
	return func(c *config) {
		c.shaderPath = path
	}
}

// WithGeometryPath sets the geometry file. An empty path draws the built-in
// triangle.
func WithGeometryPath(path string) Option {
	return func(c *config) {
		c.geometryPath = path
	}
}

// WithClearColor sets the color the render pass clears to.
func WithClearColor(col gputypes.Color) Option {
	return func(c *config) {
		c.clear = col
	}
}

// WithClearColorName sets the clear color from an SVG 1.1 color name such
// as "cornflowerblue". Unknown names are reported by Init.
func WithClearColorName(name string) Option {
	return func(c *config) {
		col, ok := NamedColor(name)
		if !ok {
			c.fail(fmt.Errorf("beany: unknown color name %q", name))
			return
		}
		c.clear = col
	}
}

// WithClearColorHex sets the clear color from a hex string such as
// "#6495ed". Malformed strings are reported by Init.
func WithClearColorHex(hex string) Option {
	return func(c *config) {
		col, err := ParseHexColor(hex)
		if err != nil {
			c.fail(err)
			return
		}
		c.clear = col
	}
}

// WithPowerPreference selects which adapter to prefer.
func WithPowerPreference(p gputypes.PowerPreference) Option {
	return func(c *config) {
		c.power = p
	}
}

// WithMissPolicy sets the persistent frame-miss policy.
func WithMissPolicy(p MissPolicy) Option {
	return func(c *config) {
		c.missPolicy = p
	}
}

// WithMaxMisses sets how many consecutive acquisition misses trigger the
// miss policy. Zero or less restores the default.
func WithMaxMisses(n int) Option {
	return func(c *config) {
		if n <= 0 {
			n = frame.DefaultMaxMisses
		}
		c.maxMisses = n
	}
}

// WithLogger sets the logger for this Application only. Without it the
// package logger from SetLogger is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
