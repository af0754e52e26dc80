// Command beany opens a window and draws the mesh from
// assets/geometry/triangle.txt with assets/shaders/triangle.wgsl.
//
// Run it from the repository root so the asset paths resolve.
package main

import (
	"log/slog"
	"os"
	"runtime"

	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/beany"
)

// The window system must be driven from the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	beany.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	app := beany.New()
	if err := app.Init(); err != nil {
		beany.Logger().Error("initialization failed", "err", err)
		app.Terminate()
		os.Exit(1)
	}
	app.MainLoop()
	app.Terminate()
}
