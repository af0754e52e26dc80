//go:build (linux && !wayland) || (freebsd && !wayland) || (netbsd && !wayland) || (openbsd && !wayland)

package window

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// NativeHandles returns the X11 Display* and Window id.
func (win *Window) NativeHandles() (display, window uintptr, err error) {
	if win.w == nil {
		return 0, 0, ErrNoHandle
	}
	d := glfw.GetX11Display()
	w := win.w.GetX11Window()
	if d == nil || w == 0 {
		return 0, 0, ErrNoHandle
	}
	return uintptr(unsafe.Pointer(d)), uintptr(w), nil
}
