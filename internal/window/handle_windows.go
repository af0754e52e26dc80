//go:build windows

package window

import "unsafe"

// NativeHandles returns the HWND. Windows surfaces need no display handle.
func (win *Window) NativeHandles() (display, window uintptr, err error) {
	if win.w == nil {
		return 0, 0, ErrNoHandle
	}
	hwnd := win.w.GetWin32Window()
	if hwnd == nil {
		return 0, 0, ErrNoHandle
	}
	return 0, uintptr(unsafe.Pointer(hwnd)), nil
}
