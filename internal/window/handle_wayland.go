//go:build (linux && wayland) || (freebsd && wayland) || (netbsd && wayland) || (openbsd && wayland)

package window

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// NativeHandles returns the wl_display and the window's wl_surface.
func (win *Window) NativeHandles() (display, window uintptr, err error) {
	if win.w == nil {
		return 0, 0, ErrNoHandle
	}
	d := glfw.GetWaylandDisplay()
	s := win.w.GetWaylandWindow()
	if d == nil || s == nil {
		return 0, 0, ErrNoHandle
	}
	return uintptr(unsafe.Pointer(d)), uintptr(unsafe.Pointer(s)), nil
}
