package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu"
)

// Kind identifies the event a Notification reports.
type Kind int

const (
	// DeviceLost reports that the device can no longer be used.
	DeviceLost Kind = iota
	// UncapturedError reports a GPU error raised while recording a frame.
	UncapturedError
	// WorkDone reports that a tracked submission finished on the GPU.
	WorkDone
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case DeviceLost:
		return "device_lost"
	case UncapturedError:
		return "uncaptured_error"
	case WorkDone:
		return "queue_work_done"
	default:
		return "unknown"
	}
}

// Notification is one asynchronous GPU event.
type Notification struct {
	Kind Kind

	// Reason is the loss reason for DeviceLost, the error type for
	// UncapturedError and the tracked work label for WorkDone.
	Reason string

	Message string

	// Index is the submission index of a WorkDone notification.
	Index uint64
}

func (n Notification) level() slog.Level {
	switch n.Kind {
	case DeviceLost:
		return slog.LevelError
	case UncapturedError:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}

func (n Notification) attrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("kind", n.Kind.String())}
	switch n.Kind {
	case DeviceLost:
		attrs = append(attrs, slog.String("reason", n.Reason))
	case UncapturedError:
		attrs = append(attrs, slog.String("type", n.Reason))
	case WorkDone:
		attrs = append(attrs, slog.String("work", n.Reason), slog.Uint64("index", n.Index))
	}
	if n.Message != "" {
		attrs = append(attrs, slog.String("message", n.Message))
	}
	return attrs
}

// errorScoper is the error-scope half of *wgpu.Device.
type errorScoper interface {
	PushErrorScope(filter wgpu.ErrorFilter)
	PopErrorScope() *wgpu.GPUError
}

// completionPoller reports the last submission index the GPU finished.
// *wgpu.Queue satisfies it.
type completionPoller interface {
	Poll() uint64
}

type tracked struct {
	index uint64
	label string
}

// notifier collects notifications between drains.
type notifier struct {
	logger *slog.Logger
	scopes errorScoper
	poller completionPoller

	lost atomic.Bool

	mu      sync.Mutex
	pending []Notification
	work    []tracked
	depth   int
}

func (n *notifier) push(note Notification) {
	n.mu.Lock()
	n.pending = append(n.pending, note)
	n.mu.Unlock()
}

func (n *notifier) isLost() bool { return n.lost.Load() }

func (n *notifier) markLost(reason, message string) {
	if n.lost.Swap(true) {
		return
	}
	n.push(Notification{Kind: DeviceLost, Reason: reason, Message: message})
}

// frame error scopes, pushed in this order and popped in reverse.
var scopeFilters = [...]wgpu.ErrorFilter{wgpu.ErrorFilterValidation, wgpu.ErrorFilterOutOfMemory}

// Lost reports whether the device was lost. A lost session is terminal.
func (s *Session) Lost() bool { return s.notes.isLost() }

// MarkLost records a device loss with the given reason.
func (s *Session) MarkLost(reason, message string) { s.notes.markLost(reason, message) }

// Observe inspects an error returned by a GPU call. Device loss marks the
// session lost and out-of-memory is recorded as an uncaptured error. The
// error is returned unchanged so callers can keep their own handling.
func (s *Session) Observe(err error) error {
	switch {
	case err == nil:
	case errors.Is(err, wgpu.ErrDeviceLost):
		s.notes.markLost("Unknown", err.Error())
	case errors.Is(err, wgpu.ErrOutOfMemory):
		s.notes.push(Notification{Kind: UncapturedError, Reason: wgpu.ErrorFilterOutOfMemory.String(), Message: err.Error()})
	}
	return err
}

// BeginFrameScope opens the validation and out-of-memory error scopes
// that capture errors raised while a frame is recorded.
func (s *Session) BeginFrameScope() {
	n := &s.notes
	if n.scopes == nil {
		return
	}
	for _, f := range scopeFilters {
		n.scopes.PushErrorScope(f)
	}
	n.depth++
}

// EndFrameScope closes the scopes opened by BeginFrameScope and turns
// every captured error into an UncapturedError notification.
func (s *Session) EndFrameScope() {
	n := &s.notes
	if n.scopes == nil || n.depth == 0 {
		return
	}
	n.depth--
	for range scopeFilters {
		gerr := n.scopes.PopErrorScope()
		if gerr == nil {
			continue
		}
		n.push(Notification{Kind: UncapturedError, Reason: gerr.Type.String(), Message: gerr.Message})
	}
}

// TrackSubmission asks for a WorkDone notification once the GPU finishes
// submission index. label names the work in the log.
func (s *Session) TrackSubmission(index uint64, label string) {
	n := &s.notes
	n.mu.Lock()
	n.work = append(n.work, tracked{index: index, label: label})
	n.mu.Unlock()
}

// poll turns finished tracked submissions into notifications. It never
// blocks.
func (n *notifier) poll() {
	if n.poller == nil {
		return
	}
	done := n.poller.Poll()

	n.mu.Lock()
	defer n.mu.Unlock()
	kept := n.work[:0]
	for _, w := range n.work {
		if w.index <= done {
			n.pending = append(n.pending, Notification{Kind: WorkDone, Reason: w.label, Message: "Success", Index: w.index})
			continue
		}
		kept = append(kept, w)
	}
	n.work = kept
}

// Drain polls the queue for finished work, logs every pending
// notification and returns them in arrival order. It never blocks.
func (s *Session) Drain() []Notification {
	n := &s.notes
	n.poll()

	n.mu.Lock()
	notes := n.pending
	n.pending = nil
	n.mu.Unlock()

	if n.logger == nil {
		return notes
	}
	for _, note := range notes {
		n.logger.LogAttrs(context.Background(), note.level(), "session: notification", note.attrs()...)
	}
	return notes
}
