package beany

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/beany/internal/frame"
	"github.com/gogpu/beany/internal/geometry"
	"github.com/gogpu/beany/internal/pipeline"
	"github.com/gogpu/beany/internal/session"
	"github.com/gogpu/beany/internal/shader"
	"github.com/gogpu/beany/internal/surface"
	"github.com/gogpu/beany/internal/window"
)

// ErrInitialized is returned by Init when called a second time.
var ErrInitialized = errors.New("beany: already initialized")

// initStep builds one layer of the renderer. Steps run in order and each
// consumes what the previous ones built.
type initStep struct {
	name string
	run  func(a *Application) error
}

var defaultSteps = []initStep{
	{"window", (*Application).openWindow},
	{"session", (*Application).openSession},
	{"surface", (*Application).configureSurface},
	{"shader", (*Application).loadShader},
	{"pipeline", (*Application).buildPipeline},
	{"geometry", (*Application).uploadGeometry},
	{"loop", (*Application).buildLoop},
}

// Application is a window with a GPU session that draws one mesh every frame.
//
// Application must be driven from the main OS thread:
//
//	func init() { runtime.LockOSThread() }
//
//	func main() {
//	    app := beany.New()
//	    if err := app.Init(); err != nil {
//	        os.Exit(1)
//	    }
//	    defer app.Terminate()
//	    app.MainLoop()
//	}
type Application struct {
	cfg    config
	logger *slog.Logger
	steps  []initStep

	win     *window.Window
	sess    *session.Session
	surf    *surface.Manager
	modules shader.ModuleCreator
	module  *shader.Module
	pipe    *wgpu.RenderPipeline
	mesh    *geometry.Buffers
	loop    *frame.Loop

	// teardown runs in reverse order on Terminate or a failed Init.
	teardown []func()
	started  bool

	resize struct {
		width, height int
		pending       bool
	}
}

// New returns an Application configured by opts. No window or GPU object
// exists until Init.
func New(opts ...Option) *Application {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = Logger()
	}
	return &Application{
		cfg:    cfg,
		logger: logger,
		steps:  defaultSteps,
	}
}

// Init opens the window and builds the GPU session, surface, pipeline and
// geometry buffers in that order. On failure everything already built is
// released and Terminate becomes a no-op.
func (a *Application) Init() error {
	if a.started {
		return ErrInitialized
	}
	a.started = true

	if a.cfg.err != nil {
		a.logger.Error("beany: invalid option", "err", a.cfg.err)
		return a.cfg.err
	}

	for _, s := range a.steps {
		if err := s.run(a); err != nil {
			a.logger.Error("beany: init failed", "step", s.name, "err", err)
			a.unwind()
			return fmt.Errorf("beany: init %s: %w", s.name, err)
		}
	}
	a.logger.Info("beany: initialized")
	return nil
}

// MainLoop renders until the window is closed, Escape is pressed or the
// device is lost. It returns immediately if Init did not succeed.
func (a *Application) MainLoop() {
	if a.loop == nil {
		a.logger.Warn("beany: main loop without successful init")
		return
	}
	err := a.loop.Run(context.Background())
	st := a.loop.Stats()
	attrs := []any{
		"iterations", st.Iterations,
		"presented", st.Presented,
		"missed", st.Missed,
		"failed", st.Failed,
		"refreshes", st.Refreshes,
	}
	if err != nil {
		a.logger.Error("beany: main loop stopped", append(attrs, "err", err)...)
		return
	}
	a.logger.Info("beany: main loop finished", attrs...)
}

// Terminate releases every resource in reverse creation order. It is safe
// to call after a failed Init and more than once.
func (a *Application) Terminate() {
	a.unwind()
}

// DeviceProvider exposes the GPU session for integrations that draw into
// the same device. It is nil before Init.
func (a *Application) DeviceProvider() gpucontext.DeviceProvider {
	if a.sess == nil {
		return nil
	}
	return a.sess
}

// SurfaceFormat returns the negotiated surface format.
func (a *Application) SurfaceFormat() gputypes.TextureFormat {
	if a.surf == nil {
		return gputypes.TextureFormatUndefined
	}
	return a.surf.Format()
}

func (a *Application) onTerminate(fn func()) {
	a.teardown = append(a.teardown, fn)
}

func (a *Application) unwind() {
	for i := len(a.teardown) - 1; i >= 0; i-- {
		a.teardown[i]()
	}
	a.teardown = nil
	a.loop = nil
	a.mesh = nil
	a.pipe = nil
	a.module = nil
	a.modules = nil
	a.surf = nil
	a.sess = nil
	a.win = nil
}

func (a *Application) openWindow() error {
	win, err := window.Open(window.Config{
		Width:     a.cfg.width,
		Height:    a.cfg.height,
		Title:     a.cfg.title,
		Resizable: a.cfg.resizable,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}
	a.win = win
	a.onTerminate(win.Destroy)

	win.OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		if key == gpucontext.KeyEscape {
			win.SetShouldClose(true)
		}
	})
	win.OnResize(a.queueResize)
	return nil
}

func (a *Application) openSession() error {
	display, handle, err := a.win.NativeHandles()
	if err != nil {
		return err
	}

	cfg := session.DefaultConfig()
	cfg.PowerPreference = a.cfg.power
	cfg.Logger = a.logger

	var mgr *surface.Manager
	sess, _, err := session.New(cfg, func(inst *wgpu.Instance) (*wgpu.Surface, error) {
		m, err := surface.Create(inst, display, handle, a.logger)
		if err != nil {
			return nil, err
		}
		mgr = m
		return m.Surface(), nil
	})
	if err != nil {
		return err
	}

	a.sess = sess
	a.modules = sess.WGPUDevice()
	a.onTerminate(sess.Release)
	a.surf = mgr
	a.onTerminate(mgr.Release)
	return nil
}

func (a *Application) configureSurface() error {
	w, h := a.win.FramebufferSize()
	if err := a.surf.Configure(a.sess.WGPUDevice(), a.sess.WGPUAdapter(), uint32(w), uint32(h)); err != nil {
		return err
	}
	a.sess.SetSurfaceFormat(a.surf.Format())
	return nil
}

func (a *Application) loadShader() error {
	m, err := shader.Load(a.modules, a.cfg.shaderPath, shader.Config{Logger: a.logger})
	if err != nil {
		return err
	}
	a.module = m
	a.onTerminate(a.releaseModule)
	return nil
}

// releaseModule drops the shader module. The pipeline keeps what it needs.
func (a *Application) releaseModule() {
	if a.module == nil {
		return
	}
	if a.module.ShaderModule != nil {
		a.module.Release()
	}
	a.module = nil
}

func (a *Application) buildPipeline() error {
	cfg := pipeline.DefaultConfig(a.surf.Format(),
		a.module.ShaderModule, a.module.VertexEntry,
		a.module.ShaderModule, a.module.FragmentEntry)
	p, err := pipeline.Build(a.sess.WGPUDevice(), cfg)
	if err != nil {
		return err
	}
	a.pipe = p
	a.onTerminate(p.Release)
	a.releaseModule()
	return nil
}

func (a *Application) uploadGeometry() error {
	var mesh *geometry.Mesh
	if a.cfg.geometryPath == "" {
		mesh = geometry.Triangle()
	} else {
		m, err := geometry.Load(a.cfg.geometryPath, a.logger)
		if err != nil {
			return err
		}
		mesh = m
	}

	queue := a.sess.WGPUQueue()
	bufs, err := geometry.Upload(a.sess.WGPUDevice(), queue, mesh)
	if err != nil {
		return a.sess.Observe(err)
	}
	a.mesh = bufs
	a.onTerminate(bufs.Release)

	// Buffer writes are flushed with the next submission.
	a.sess.TrackSubmission(queue.LastSubmissionIndex()+1, "upload")
	return nil
}

func (a *Application) buildLoop() error {
	enc := &frame.PassEncoder{
		Device:   a.sess.WGPUDevice(),
		Pipeline: a.pipe,
		Mesh:     a.mesh,
		Clear:    a.cfg.clear,
	}
	a.loop = frame.New(frame.Config{
		MissPolicy: a.cfg.missPolicy,
		MaxMisses:  a.cfg.maxMisses,
		Logger:     a.logger,
	}, a.surf, enc, a.sess.WGPUQueue(), appEvents{a}, a.sess)
	return nil
}

func (a *Application) queueResize(width, height int) {
	a.resize.width, a.resize.height = width, height
	a.resize.pending = true
}

// applyResize reconfigures the surface for the last reported framebuffer
// size. Zero sizes from a minimized window leave the surface untouched.
func (a *Application) applyResize() {
	if !a.resize.pending || a.surf == nil {
		return
	}
	a.resize.pending = false
	w, h := a.resize.width, a.resize.height
	if err := a.surf.Reconfigure(uint32(w), uint32(h)); err != nil {
		a.logger.Warn("beany: resize failed", "width", w, "height", h, "err", err)
		return
	}
	a.logger.Debug("beany: surface resized", "width", w, "height", h)
}

// appEvents feeds window state to the frame loop and applies resizes
// between iterations.
type appEvents struct{ a *Application }

func (e appEvents) ShouldClose() bool { return e.a.win.ShouldClose() }

func (e appEvents) PollEvents() {
	e.a.win.PollEvents()
	e.a.applyResize()
}
