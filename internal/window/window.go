// Package window opens the native window the renderer presents into.
//
// The window is created through GLFW without a client API, so no OpenGL
// context competes with the GPU surface. All functions must be called from
// the main OS thread.
package window

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/beany/internal/logging"
)

var (
	// ErrInit is returned when the windowing system cannot be initialized.
	ErrInit = errors.New("window: cannot initialize windowing system")

	// ErrCreate is returned when the window cannot be created.
	ErrCreate = errors.New("window: cannot create window")

	// ErrNoHandle is returned when the platform handle is unavailable.
	ErrNoHandle = errors.New("window: native handle unavailable")
)

// Config describes the window to open.
type Config struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	Logger    *slog.Logger
}

// KeyFunc receives key presses translated to gpucontext key codes.
type KeyFunc func(key gpucontext.Key, mods gpucontext.Modifiers)

// ResizeFunc receives the new framebuffer size in pixels.
type ResizeFunc func(width, height int)

// Window is a GLFW window without a client API.
type Window struct {
	w      *glfw.Window
	logger *slog.Logger

	onKey    []KeyFunc
	onResize []ResizeFunc

	// layer is the CAMetalLayer attached to the content view on macOS.
	layer uintptr
}

var _ gpucontext.WindowProvider = (*Window)(nil)

// Open initializes GLFW and creates the window.
func Open(cfg Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	resizable := glfw.False
	if cfg.Resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	gw, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: %w", ErrCreate, err)
	}

	win := &Window{w: gw, logger: logging.Or(cfg.Logger)}
	gw.SetKeyCallback(win.handleKey)
	gw.SetFramebufferSizeCallback(win.handleResize)

	fw, fh := gw.GetFramebufferSize()
	win.logger.Info("window: opened",
		"title", cfg.Title,
		"width", fw,
		"height", fh,
		"resizable", cfg.Resizable,
	)
	return win, nil
}

func (win *Window) handleKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	k, m := translateKey(key), translateMods(mods)
	for _, fn := range win.onKey {
		fn(k, m)
	}
}

func (win *Window) handleResize(_ *glfw.Window, width, height int) {
	win.logger.Debug("window: framebuffer resized", "width", width, "height", height)
	for _, fn := range win.onResize {
		fn(width, height)
	}
}

// OnKeyPress registers fn for key presses. Repeats and releases are not
// reported.
func (win *Window) OnKeyPress(fn KeyFunc) {
	win.onKey = append(win.onKey, fn)
}

// OnResize registers fn for framebuffer size changes.
func (win *Window) OnResize(fn ResizeFunc) {
	win.onResize = append(win.onResize, fn)
}

// ShouldClose reports whether the user asked to close the window.
func (win *Window) ShouldClose() bool {
	return win.w == nil || win.w.ShouldClose()
}

// SetShouldClose requests or cancels closing.
func (win *Window) SetShouldClose(v bool) {
	if win.w != nil {
		win.w.SetShouldClose(v)
	}
}

// PollEvents processes pending window events without blocking.
func (win *Window) PollEvents() {
	glfw.PollEvents()
}

// Size returns the client area size in screen coordinates.
func (win *Window) Size() (width, height int) {
	if win.w == nil {
		return 0, 0
	}
	return win.w.GetSize()
}

// FramebufferSize returns the client area size in pixels.
func (win *Window) FramebufferSize() (width, height int) {
	if win.w == nil {
		return 0, 0
	}
	return win.w.GetFramebufferSize()
}

// ScaleFactor returns the horizontal content scale.
func (win *Window) ScaleFactor() float64 {
	if win.w == nil {
		return 1
	}
	x, _ := win.w.GetContentScale()
	if x <= 0 {
		return 1
	}
	return float64(x)
}

// RequestRedraw wakes up the event loop.
func (win *Window) RequestRedraw() {
	glfw.PostEmptyEvent()
}

// Destroy closes the window and terminates GLFW. Safe to call more than once.
func (win *Window) Destroy() {
	if win.w == nil {
		return
	}
	win.w.Destroy()
	win.w = nil
	glfw.Terminate()
}
