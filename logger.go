package beany

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/beany/internal/logging"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(logging.Nop())
}

// SetLogger configures the logger for beany and the GPU stack beneath it.
// By default, beany produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by beany:
//   - [slog.LevelDebug]: GPU object creation, finished queue work
//   - [slog.LevelInfo]: lifecycle (adapter selected, surface configured, geometry loaded)
//   - [slog.LevelWarn]: skipped frames, uncaptured GPU errors
//   - [slog.LevelError]: setup failures, device loss
//
// Example:
//
//	beany.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = logging.Nop()
	}
	loggerPtr.Store(l)
	wgpu.SetLogger(l)
}

// Logger returns the current logger used by beany.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
