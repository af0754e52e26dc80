package beany

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/beany/internal/shader"
	"github.com/gogpu/beany/internal/surface"
)

// countingModules hands out nil modules, which the application never
// dereferences.
type countingModules struct{ calls int }

func (m *countingModules) CreateShaderModule(*wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	m.calls++
	return nil, nil
}

// recordingSteps returns init steps that stand in for the window and session
// layers and record their teardown into order.
func recordingSteps(order *[]string, modules shader.ModuleCreator) []initStep {
	record := func(name string) func() {
		return func() { *order = append(*order, name) }
	}
	return []initStep{
		{"window", func(a *Application) error {
			a.onTerminate(record("window"))
			return nil
		}},
		{"session", func(a *Application) error {
			a.modules = modules
			a.onTerminate(record("session"))
			a.onTerminate(record("surface"))
			return nil
		}},
	}
}

func TestInitMissingShader(t *testing.T) {
	var order []string
	modules := &countingModules{}

	a := New(WithShaderPath(filepath.Join(t.TempDir(), "missing.wgsl")))
	a.steps = append(recordingSteps(&order, modules),
		initStep{"shader", (*Application).loadShader},
		initStep{"pipeline", func(*Application) error {
			t.Error("pipeline step ran after a failed shader step")
			return nil
		}},
	)

	err := a.Init()
	if !errors.Is(err, shader.ErrRead) {
		t.Fatalf("Init() error = %v, want %v", err, shader.ErrRead)
	}
	if !strings.HasPrefix(err.Error(), "beany: init shader:") {
		t.Errorf("Init() error = %q, want step prefix", err)
	}
	if modules.calls != 0 {
		t.Errorf("CreateShaderModule called %d times, want 0", modules.calls)
	}
	if got := strings.Join(order, " "); got != "surface session window" {
		t.Errorf("teardown order = %q, want %q", got, "surface session window")
	}

	// Nothing is left to release twice.
	a.Terminate()
	a.Terminate()
	if len(order) != 3 {
		t.Errorf("teardown ran %d times, want 3", len(order))
	}
	if a.DeviceProvider() != nil {
		t.Error("DeviceProvider() should be nil after a failed Init")
	}

	// MainLoop returns immediately without a loop.
	a.MainLoop()
}

func TestInitTwice(t *testing.T) {
	var order []string
	a := New()
	a.steps = recordingSteps(&order, &countingModules{})

	if err := a.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := a.Init(); !errors.Is(err, ErrInitialized) {
		t.Errorf("second Init() error = %v, want %v", err, ErrInitialized)
	}

	a.Terminate()
	if got := strings.Join(order, " "); got != "surface session window" {
		t.Errorf("teardown order = %q", got)
	}
}

func TestInitInvalidOption(t *testing.T) {
	ran := false
	a := New(WithClearColorName("nope"))
	a.steps = []initStep{{"window", func(*Application) error {
		ran = true
		return nil
	}}}

	if err := a.Init(); err == nil {
		t.Fatal("Init() succeeded with an invalid option")
	}
	if ran {
		t.Error("init steps ran with an invalid option")
	}
	a.Terminate()
}

func TestInitLoadsShaderWithFakeDevice(t *testing.T) {
	var order []string
	modules := &countingModules{}

	a := New(WithShaderPath(filepath.Join("assets", "shaders", "triangle.wgsl")))
	a.steps = append(recordingSteps(&order, modules),
		initStep{"shader", (*Application).loadShader})

	if err := a.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if modules.calls != 1 {
		t.Errorf("CreateShaderModule called %d times, want 1", modules.calls)
	}
	if a.module == nil || a.module.VertexEntry != "vs_main" || a.module.FragmentEntry != "fs_main" {
		t.Errorf("module = %+v", a.module)
	}
	a.Terminate()
	if a.module != nil {
		t.Error("shader module kept after Terminate")
	}
}

type resizeTarget struct {
	configs []wgpu.SurfaceConfiguration
}

func (r *resizeTarget) Configure(_ *wgpu.Device, cfg *wgpu.SurfaceConfiguration) error {
	r.configs = append(r.configs, *cfg)
	return nil
}
func (r *resizeTarget) Unconfigure() {}
func (r *resizeTarget) GetCurrentTexture() (*wgpu.SurfaceTexture, bool, error) {
	return &wgpu.SurfaceTexture{}, false, nil
}
func (r *resizeTarget) Present(*wgpu.SurfaceTexture) error { return nil }
func (r *resizeTarget) DiscardTexture()                     {}
func (r *resizeTarget) Release()                            {}

type capsFunc func() *wgpu.SurfaceCapabilities

func (f capsFunc) GetSurfaceCapabilities(*wgpu.Surface) *wgpu.SurfaceCapabilities { return f() }

func TestApplyResize(t *testing.T) {
	target := &resizeTarget{}
	mgr := surface.NewManager(target, nil)
	caps := capsFunc(func() *wgpu.SurfaceCapabilities {
		return &wgpu.SurfaceCapabilities{
			Formats:      []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm},
			PresentModes: []gputypes.PresentMode{gputypes.PresentModeFifo},
			AlphaModes:   []gputypes.CompositeAlphaMode{gputypes.CompositeAlphaModeAuto},
		}
	})
	if err := mgr.Configure(nil, caps, 800, 600); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	a := New()
	a.surf = mgr

	a.applyResize()
	if len(target.configs) != 1 {
		t.Fatalf("configs = %d without a resize, want 1", len(target.configs))
	}

	a.queueResize(1024, 768)
	a.queueResize(1280, 720)
	a.applyResize()
	if len(target.configs) != 2 {
		t.Fatalf("configs = %d, want 2", len(target.configs))
	}
	if got := target.configs[1]; got.Width != 1280 || got.Height != 720 {
		t.Errorf("resized to %dx%d, want 1280x720", got.Width, got.Height)
	}
	if a.resize.pending {
		t.Error("resize still pending after apply")
	}

	// A minimized window reports 0x0.
	a.queueResize(0, 0)
	a.applyResize()
	if len(target.configs) != 2 {
		t.Errorf("configs = %d after a zero resize, want 2", len(target.configs))
	}
}
