package window

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/beany/internal/logging"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		in   glfw.Key
		want gpucontext.Key
	}{
		{glfw.KeyEscape, gpucontext.KeyEscape},
		{glfw.KeyA, gpucontext.KeyA},
		{glfw.KeyZ, gpucontext.KeyZ},
		{glfw.Key0, gpucontext.Key0},
		{glfw.Key9, gpucontext.Key9},
		{glfw.KeyF1, gpucontext.KeyF1},
		{glfw.KeyF12, gpucontext.KeyF12},
		{glfw.KeyKP0, gpucontext.KeyNumpad0},
		{glfw.KeyKP9, gpucontext.KeyNumpad9},
		{glfw.KeyGraveAccent, gpucontext.KeyGrave},
		{glfw.KeyKPEnter, gpucontext.KeyNumpadEnter},
		{glfw.KeyF13, gpucontext.KeyUnknown},
		{glfw.KeyMenu, gpucontext.KeyUnknown},
		{glfw.KeyUnknown, gpucontext.KeyUnknown},
	}
	for _, tt := range tests {
		if got := translateKey(tt.in); got != tt.want {
			t.Errorf("translateKey(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTranslateMods(t *testing.T) {
	tests := []struct {
		name string
		in   glfw.ModifierKey
		want gpucontext.Modifiers
	}{
		{"none", 0, 0},
		{"shift", glfw.ModShift, gpucontext.ModShift},
		{"ctrl+alt", glfw.ModControl | glfw.ModAlt, gpucontext.ModControl | gpucontext.ModAlt},
		{"super", glfw.ModSuper, gpucontext.ModSuper},
		{"locks", glfw.ModCapsLock | glfw.ModNumLock, gpucontext.ModCapsLock | gpucontext.ModNumLock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateMods(tt.in); got != tt.want {
				t.Errorf("translateMods(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeyCallbackFiltersPresses(t *testing.T) {
	win := &Window{}
	var got []gpucontext.Key
	win.OnKeyPress(func(k gpucontext.Key, _ gpucontext.Modifiers) { got = append(got, k) })

	win.handleKey(nil, glfw.KeyEscape, 0, glfw.Press, 0)
	win.handleKey(nil, glfw.KeyEscape, 0, glfw.Repeat, 0)
	win.handleKey(nil, glfw.KeyEscape, 0, glfw.Release, 0)

	if len(got) != 1 || got[0] != gpucontext.KeyEscape {
		t.Errorf("key presses = %v, want [Escape]", got)
	}
}

func TestResizeCallback(t *testing.T) {
	win := &Window{logger: logging.Nop()}
	var w, h int
	win.OnResize(func(width, height int) { w, h = width, height })
	win.handleResize(nil, 1024, 768)
	if w != 1024 || h != 768 {
		t.Errorf("resize = %dx%d, want 1024x768", w, h)
	}
}

func TestClosedWindow(t *testing.T) {
	win := &Window{}
	if !win.ShouldClose() {
		t.Error("ShouldClose() = false for a destroyed window")
	}
	if w, h := win.Size(); w != 0 || h != 0 {
		t.Errorf("Size() = %dx%d, want 0x0", w, h)
	}
	if s := win.ScaleFactor(); s != 1 {
		t.Errorf("ScaleFactor() = %v, want 1", s)
	}
	if _, _, err := win.NativeHandles(); err == nil {
		t.Error("NativeHandles() error = nil for a destroyed window")
	}
	win.SetShouldClose(true)
	win.Destroy()
}
