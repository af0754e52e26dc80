//go:build darwin

package window

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"
)

const quartzCore = "/System/Library/Frameworks/QuartzCore.framework/QuartzCore"

var (
	loadQuartz sync.Once
	quartzErr  error

	selLayer         = objc.RegisterName("layer")
	selContentView   = objc.RegisterName("contentView")
	selSetWantsLayer = objc.RegisterName("setWantsLayer:")
	selSetLayer      = objc.RegisterName("setLayer:")
	selRetain        = objc.RegisterName("retain")
)

// NativeHandles returns a CAMetalLayer installed as the backing layer of
// the window's content view. The layer is created on first use.
func (win *Window) NativeHandles() (display, window uintptr, err error) {
	if win.w == nil {
		return 0, 0, ErrNoHandle
	}
	if win.layer != 0 {
		return 0, win.layer, nil
	}

	loadQuartz.Do(func() {
		_, quartzErr = purego.Dlopen(quartzCore, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	})
	if quartzErr != nil {
		return 0, 0, fmt.Errorf("%w: load QuartzCore: %w", ErrNoHandle, quartzErr)
	}

	nsWindow := objc.ID(uintptr(win.w.GetCocoaWindow()))
	if nsWindow == 0 {
		return 0, 0, ErrNoHandle
	}
	view := nsWindow.Send(selContentView)
	if view == 0 {
		return 0, 0, fmt.Errorf("%w: window has no content view", ErrNoHandle)
	}

	class := objc.GetClass("CAMetalLayer")
	if class == 0 {
		return 0, 0, fmt.Errorf("%w: CAMetalLayer unavailable", ErrNoHandle)
	}
	layer := objc.ID(class).Send(selLayer).Send(selRetain)
	if layer == 0 {
		return 0, 0, fmt.Errorf("%w: cannot create CAMetalLayer", ErrNoHandle)
	}

	view.Send(selSetWantsLayer, true)
	view.Send(selSetLayer, layer)

	win.layer = uintptr(layer)
	return 0, win.layer, nil
}
