// Package surface binds a native window to a presentable GPU surface and
// hands out one frame at a time.
package surface

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/beany/internal/logging"
)

// ViewLabel is the debug label of every per-frame texture view.
const ViewLabel = "Surface texture view"

var (
	// ErrCreate is returned when the native handle cannot back a surface.
	ErrCreate = errors.New("surface: cannot create surface")

	// ErrNoFormat is returned when the adapter reports no usable format.
	ErrNoFormat = errors.New("surface: no supported format")

	// ErrNotConfigured is returned when a frame is requested before Configure.
	ErrNotConfigured = errors.New("surface: not configured")

	// ErrFrameMissed is returned when no frame could be acquired this
	// iteration. It wraps the backend status.
	ErrFrameMissed = errors.New("surface: frame missed")

	// ErrFrameOutstanding is returned by Acquire while the previous frame
	// has been neither presented nor discarded.
	ErrFrameOutstanding = errors.New("surface: previous frame still outstanding")
)

// Target is the part of *wgpu.Surface the Manager drives.
type Target interface {
	Configure(device *wgpu.Device, config *wgpu.SurfaceConfiguration) error
	Unconfigure()
	GetCurrentTexture() (*wgpu.SurfaceTexture, bool, error)
	Present(texture *wgpu.SurfaceTexture) error
	DiscardTexture()
	Release()
}

// Creator creates surfaces from native handles. *wgpu.Instance satisfies it.
type Creator interface {
	CreateSurface(displayHandle, windowHandle uintptr) (*wgpu.Surface, error)
}

// CapabilityQuerier reports what a surface supports on an adapter.
// *wgpu.Adapter satisfies it.
type CapabilityQuerier interface {
	GetSurfaceCapabilities(surface *wgpu.Surface) *wgpu.SurfaceCapabilities
}

// Config is the configuration applied to the surface.
type Config struct {
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	PresentMode gputypes.PresentMode
	AlphaMode   gputypes.CompositeAlphaMode
	Usage       gputypes.TextureUsage
}

// Negotiate picks the configuration for a surface of the given size:
// the first reported format, FIFO presentation, automatic alpha and
// render-attachment usage.
func Negotiate(caps *wgpu.SurfaceCapabilities, width, height uint32) (Config, error) {
	if caps == nil || len(caps.Formats) == 0 || caps.Formats[0] == gputypes.TextureFormatUndefined {
		return Config{}, ErrNoFormat
	}
	return Config{
		Width:       width,
		Height:      height,
		Format:      caps.Formats[0],
		PresentMode: gputypes.PresentModeFifo,
		AlphaMode:   gputypes.CompositeAlphaModeAuto,
		Usage:       gputypes.TextureUsageRenderAttachment,
	}, nil
}

// Frame is one acquired surface texture and its single view.
// It must be passed to Present or Discard before the next Acquire.
type Frame struct {
	Texture    *wgpu.SurfaceTexture
	View       *wgpu.TextureView
	Suboptimal bool
}

// Manager owns a surface, its configuration and the outstanding frame.
type Manager struct {
	raw    *wgpu.Surface
	target Target
	logger *slog.Logger

	device     *wgpu.Device
	cfg        Config
	configured bool

	frame *Frame

	createView func(*wgpu.SurfaceTexture, *wgpu.TextureViewDescriptor) (*wgpu.TextureView, error)
}

// Create binds the native display and window handles to a new surface.
func Create(inst Creator, display, window uintptr, logger *slog.Logger) (*Manager, error) {
	if window == 0 {
		return nil, fmt.Errorf("%w: nil window handle", ErrCreate)
	}
	s, err := inst.CreateSurface(display, window)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreate, err)
	}
	m := NewManager(s, logger)
	m.raw = s
	return m, nil
}

// NewManager wraps an existing surface target.
func NewManager(t Target, logger *slog.Logger) *Manager {
	return &Manager{
		target:     t,
		logger:     logging.Or(logger),
		createView: defaultCreateView,
	}
}

func defaultCreateView(st *wgpu.SurfaceTexture, desc *wgpu.TextureViewDescriptor) (*wgpu.TextureView, error) {
	return st.CreateView(desc)
}

// Surface returns the underlying surface, or nil when the manager wraps
// a Target that is not a *wgpu.Surface.
func (m *Manager) Surface() *wgpu.Surface { return m.raw }

// Config returns the applied configuration.
func (m *Manager) Config() Config { return m.cfg }

// Format returns the negotiated format, or TextureFormatUndefined before
// Configure.
func (m *Manager) Format() gputypes.TextureFormat { return m.cfg.Format }

// Configured reports whether the surface is configured.
func (m *Manager) Configured() bool { return m.configured }

// Configure negotiates the surface configuration with the adapter and
// applies it. Calling it again with the same size is a no-op.
func (m *Manager) Configure(device *wgpu.Device, adapter CapabilityQuerier, width, height uint32) error {
	cfg, err := Negotiate(adapter.GetSurfaceCapabilities(m.raw), width, height)
	if err != nil {
		return err
	}
	return m.apply(device, cfg)
}

// Reconfigure applies the last configuration with a new size. A zero
// dimension (a minimized window) leaves the surface unchanged.
func (m *Manager) Reconfigure(width, height uint32) error {
	if !m.configured {
		return ErrNotConfigured
	}
	if width == 0 || height == 0 {
		return nil
	}
	cfg := m.cfg
	cfg.Width, cfg.Height = width, height
	return m.apply(m.device, cfg)
}

// Refresh reapplies the current configuration unconditionally, recreating
// the swapchain after it went out of date.
func (m *Manager) Refresh() error {
	if !m.configured {
		return ErrNotConfigured
	}
	m.configured = false
	return m.apply(m.device, m.cfg)
}

func (m *Manager) apply(device *wgpu.Device, cfg Config) error {
	if m.configured && device == m.device && cfg == m.cfg {
		return nil
	}
	err := m.target.Configure(device, &wgpu.SurfaceConfiguration{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      cfg.Format,
		Usage:       cfg.Usage,
		PresentMode: cfg.PresentMode,
		AlphaMode:   cfg.AlphaMode,
	})
	if err != nil {
		return fmt.Errorf("surface: configure %dx%d %s: %w", cfg.Width, cfg.Height, cfg.Format, err)
	}
	m.device = device
	m.cfg = cfg
	m.configured = true
	m.logger.Info("surface: configured",
		"width", cfg.Width,
		"height", cfg.Height,
		"format", cfg.Format.String(),
	)
	return nil
}

// ViewDescriptor describes the full-resource 2D view of a surface texture.
func ViewDescriptor(format gputypes.TextureFormat) *wgpu.TextureViewDescriptor {
	return &wgpu.TextureViewDescriptor{
		Label:           ViewLabel,
		Format:          format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
	}
}

// Acquire returns the next frame. Optimal and suboptimal textures are both
// usable; any other outcome returns an error wrapping ErrFrameMissed and
// leaves nothing outstanding.
func (m *Manager) Acquire() (*Frame, error) {
	if !m.configured {
		return nil, ErrNotConfigured
	}
	if m.frame != nil {
		return nil, ErrFrameOutstanding
	}

	tex, suboptimal, err := m.target.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrameMissed, err)
	}
	if tex == nil {
		return nil, fmt.Errorf("%w: no texture", ErrFrameMissed)
	}
	if suboptimal {
		m.logger.Debug("surface: suboptimal texture")
	}

	view, err := m.createView(tex, ViewDescriptor(m.cfg.Format))
	if err != nil {
		m.target.DiscardTexture()
		return nil, fmt.Errorf("%w: create view: %w", ErrFrameMissed, err)
	}

	m.frame = &Frame{Texture: tex, View: view, Suboptimal: suboptimal}
	return m.frame, nil
}

// Present shows f and releases its view.
func (m *Manager) Present(f *Frame) error {
	if f == nil || f != m.frame {
		return nil
	}
	err := m.target.Present(f.Texture)
	m.finish(f)
	if err != nil {
		return fmt.Errorf("surface: present: %w", err)
	}
	return nil
}

// Discard drops f without presenting it and releases its view.
func (m *Manager) Discard(f *Frame) {
	if f == nil || f != m.frame {
		return
	}
	m.target.DiscardTexture()
	m.finish(f)
}

func (m *Manager) finish(f *Frame) {
	if f.View != nil {
		f.View.Release()
		f.View = nil
	}
	f.Texture = nil
	m.frame = nil
}

// Unconfigure discards any outstanding frame and drops the configuration.
func (m *Manager) Unconfigure() {
	if m.frame != nil {
		m.Discard(m.frame)
	}
	if m.configured {
		m.target.Unconfigure()
		m.configured = false
	}
}

// Release unconfigures and releases the surface. It is safe to call more
// than once.
func (m *Manager) Release() {
	if m.target == nil {
		return
	}
	m.Unconfigure()
	m.target.Release()
	m.target = nil
	m.raw = nil
}
