// Package session owns the GPU object chain of the renderer:
// instance, adapter, device and queue.
//
// The chain is acquired in a fixed order. Open creates the instance, the
// caller binds a surface to it, then RequestAdapter and RequestDevice
// finish the chain. New runs the whole protocol in one call.
//
// Asynchronous GPU events (device loss, uncaptured errors, finished queue
// work) are not delivered through callbacks. They are collected into a
// notification queue that the frame loop drains once per iteration.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/beany/internal/logging"
)

// Labels given to the device and its queue.
const (
	DeviceLabel = "Device"
	QueueLabel  = "Default Queue"
)

var (
	// ErrNoInstance is returned when the GPU instance cannot be created.
	ErrNoInstance = errors.New("session: cannot create instance")

	// ErrNoAdapter is returned when no adapter matches the request.
	ErrNoAdapter = errors.New("session: no adapter available")

	// ErrNoDevice is returned when the adapter refuses the device request.
	ErrNoDevice = errors.New("session: cannot create device")

	// ErrNoQueue is returned when the device has no queue.
	ErrNoQueue = errors.New("session: device has no queue")

	// ErrDeviceLost is returned by operations on a lost session.
	ErrDeviceLost = errors.New("session: device lost")

	// ErrOrder is returned when the acquisition steps run out of order.
	ErrOrder = errors.New("session: acquisition out of order")
)

// Config controls instance, adapter and device acquisition.
type Config struct {
	// Backends restricts the instance to a set of backends.
	// Zero selects every registered backend.
	Backends gputypes.Backends

	// PowerPreference is passed to the adapter request.
	PowerPreference gputypes.PowerPreference

	// ForceFallbackAdapter requests a software adapter.
	ForceFallbackAdapter bool

	// Debug enables backend validation layers.
	Debug bool

	// Logger receives lifecycle and notification logs. Nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration used by the renderer:
// every backend, high-performance adapter.
func DefaultConfig() Config {
	return Config{
		Backends:        gputypes.BackendsAll,
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	}
}

// Session owns the instance, adapter, device and queue.
//
// A Session is driven from the render thread. Notification and
// DeviceProvider accessors are safe for concurrent use.
type Session struct {
	cfg    Config
	logger *slog.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	info   gputypes.AdapterInfo
	limits gputypes.Limits

	mu     sync.RWMutex
	format gputypes.TextureFormat

	notes notifier
}

// Compile-time check that Session satisfies gpucontext.DeviceProvider.
var _ gpucontext.DeviceProvider = (*Session)(nil)

// Open creates the GPU instance. The returned Session has no adapter yet.
func Open(cfg Config) (*Session, error) {
	desc := &wgpu.InstanceDescriptor{Backends: cfg.Backends}
	if cfg.Backends == 0 {
		desc.Backends = gputypes.BackendsAll
	}
	if cfg.Debug {
		desc.Flags = gputypes.InstanceFlagsDebug
	}

	inst, err := wgpu.CreateInstance(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoInstance, err)
	}

	s := &Session{
		cfg:      cfg,
		logger:   logging.Or(cfg.Logger),
		instance: inst,
	}
	s.notes.logger = s.logger
	return s, nil
}

// New runs the full acquisition protocol. bind is called with the instance
// and returns the surface that the adapter must be able to present to; it
// may be nil for a headless session. On failure everything created so far
// is released, including the surface returned by bind.
func New(cfg Config, bind func(*wgpu.Instance) (*wgpu.Surface, error)) (*Session, *wgpu.Surface, error) {
	s, err := Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	var surf *wgpu.Surface
	if bind != nil {
		surf, err = bind(s.instance)
		if err != nil {
			s.Release()
			return nil, nil, err
		}
	}

	if err := s.RequestAdapter(surf); err != nil {
		releaseSurface(surf)
		s.Release()
		return nil, nil, err
	}
	if err := s.RequestDevice(); err != nil {
		releaseSurface(surf)
		s.Release()
		return nil, nil, err
	}
	return s, surf, nil
}

func releaseSurface(surf *wgpu.Surface) {
	if surf != nil {
		surf.Release()
	}
}

// Instance returns the GPU instance, or nil after Release.
func (s *Session) Instance() *wgpu.Instance { return s.instance }

// RequestAdapter selects an adapter compatible with surface, which may be
// nil. The chosen adapter is logged with its name, vendor, backend and type.
func (s *Session) RequestAdapter(surface *wgpu.Surface) error {
	if s.instance == nil || s.adapter != nil {
		return fmt.Errorf("%w: adapter requested twice or after release", ErrOrder)
	}

	adapter, err := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference:      s.cfg.PowerPreference,
		ForceFallbackAdapter: s.cfg.ForceFallbackAdapter,
		CompatibleSurface:    surface,
	})
	if err != nil {
		s.logger.Error("session: adapter request failed", "err", err)
		return fmt.Errorf("%w: %w", ErrNoAdapter, err)
	}
	if adapter == nil {
		return ErrNoAdapter
	}

	s.adapter = adapter
	s.info = adapter.Info()
	s.logger.Info("Using device",
		"name", s.info.Name,
		"vendor", s.info.Vendor,
		"backend", s.info.Backend.String(),
		"type", s.info.DeviceType.String(),
		"driver", s.info.Driver,
	)
	return nil
}

// Adapter returns the selected adapter, or nil before RequestAdapter.
func (s *Session) Adapter() gpucontext.Adapter {
	if s.adapter == nil {
		return nil
	}
	return s.adapter
}

// WGPUAdapter returns the selected adapter with its concrete type.
func (s *Session) WGPUAdapter() *wgpu.Adapter { return s.adapter }

// RequestDevice creates the device with the limits from RequiredLimits
// and fetches its queue.
func (s *Session) RequestDevice() error {
	if s.adapter == nil || s.device != nil {
		return fmt.Errorf("%w: device requested without adapter or twice", ErrOrder)
	}

	limits := RequiredLimits(s.adapter.Limits())
	dev, err := s.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          DeviceLabel,
		RequiredLimits: limits,
	})
	if err != nil {
		s.logger.Error("session: device request failed", "err", err)
		return fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	if dev == nil {
		return ErrNoDevice
	}

	q := dev.Queue()
	if q == nil {
		dev.Release()
		return ErrNoQueue
	}

	s.device = dev
	s.queue = q
	s.limits = limits
	s.notes.scopes = dev
	s.notes.poller = q

	s.logger.Debug("session: device ready",
		"device", DeviceLabel,
		"queue", QueueLabel,
		"max_vertex_attributes", limits.MaxVertexAttributes,
		"max_vertex_buffers", limits.MaxVertexBuffers,
		"max_vertex_stride", limits.MaxVertexBufferArrayStride,
	)
	return nil
}

// WGPUDevice returns the device with its concrete type.
func (s *Session) WGPUDevice() *wgpu.Device { return s.device }

// WGPUQueue returns the queue with its concrete type.
func (s *Session) WGPUQueue() *wgpu.Queue { return s.queue }

// Limits returns the limits the device was created with.
func (s *Session) Limits() gputypes.Limits { return s.limits }

// Info returns the full description of the selected adapter.
func (s *Session) Info() gputypes.AdapterInfo { return s.info }

// Device implements gpucontext.DeviceProvider.
func (s *Session) Device() gpucontext.Device {
	if s.device == nil {
		return nil
	}
	return s.device
}

// Queue implements gpucontext.DeviceProvider.
func (s *Session) Queue() gpucontext.Queue {
	if s.queue == nil {
		return nil
	}
	return s.queue
}

// SetSurfaceFormat records the format negotiated by the surface so that
// DeviceProvider consumers can build matching pipelines.
func (s *Session) SetSurfaceFormat(f gputypes.TextureFormat) {
	s.mu.Lock()
	s.format = f
	s.mu.Unlock()
}

// SurfaceFormat implements gpucontext.DeviceProvider.
func (s *Session) SurfaceFormat() gputypes.TextureFormat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.format
}

// AdapterInfo implements gpucontext.DeviceProvider.
func (s *Session) AdapterInfo() gpucontext.AdapterInfo {
	if s.adapter == nil {
		return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
	}
	return gpucontext.AdapterInfo{
		Name: s.info.Name,
		Type: adapterType(s.info.DeviceType),
	}
}

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// Release waits for outstanding GPU work and releases the device, adapter
// and instance in reverse acquisition order. It is safe to call more than
// once.
func (s *Session) Release() {
	if s.device != nil {
		if !s.notes.isLost() {
			if err := s.device.WaitIdle(); err != nil {
				s.logger.Warn("session: wait idle failed", "err", err)
			}
		}
		s.device.Release()
		s.device = nil
		s.queue = nil
		s.notes.scopes = nil
		s.notes.poller = nil
	}
	if s.adapter != nil {
		s.adapter.Release()
		s.adapter = nil
	}
	if s.instance != nil {
		s.instance.Release()
		s.instance = nil
	}
}
