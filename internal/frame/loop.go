// Package frame drives the per-frame render cycle: acquire a surface
// frame, encode one render pass, submit, present, then pump window events
// and drain GPU notifications.
package frame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/beany/internal/logging"
	"github.com/gogpu/beany/internal/session"
	"github.com/gogpu/beany/internal/surface"
)

// DefaultMaxMisses is the number of consecutive acquisition misses after
// which the miss policy applies.
const DefaultMaxMisses = 60

var (
	// ErrDeviceLost stops the loop once the session reports device loss.
	ErrDeviceLost = errors.New("frame: device lost")

	// ErrPersistentMiss stops the loop when frames keep failing to acquire
	// under MissPolicyExit.
	ErrPersistentMiss = errors.New("frame: surface keeps missing frames")
)

// MissPolicy decides what happens when acquisition keeps failing.
type MissPolicy int

const (
	// MissPolicyExit ends the loop after MaxMisses consecutive misses.
	MissPolicyExit MissPolicy = iota
	// MissPolicyReconfigure reconfigures the surface after MaxMisses
	// consecutive misses and keeps going.
	MissPolicyReconfigure
)

// String returns the policy name.
func (p MissPolicy) String() string {
	switch p {
	case MissPolicyExit:
		return "exit"
	case MissPolicyReconfigure:
		return "reconfigure"
	default:
		return fmt.Sprintf("MissPolicy(%d)", int(p))
	}
}

// Source hands out surface frames. *surface.Manager satisfies it.
type Source interface {
	Acquire() (*surface.Frame, error)
	Present(f *surface.Frame) error
	Discard(f *surface.Frame)
	Refresh() error
}

// Encoder records a frame targeting view. *PassEncoder satisfies it.
type Encoder interface {
	Encode(view *wgpu.TextureView) (*wgpu.CommandBuffer, error)
}

// Submitter submits command buffers. *wgpu.Queue satisfies it.
type Submitter interface {
	Submit(commandBuffers ...*wgpu.CommandBuffer) (uint64, error)
}

// Events is the window side of the loop.
type Events interface {
	ShouldClose() bool
	PollEvents()
}

// Notifier is the session side of the loop. *session.Session satisfies it.
type Notifier interface {
	Lost() bool
	Observe(err error) error
	BeginFrameScope()
	EndFrameScope()
	TrackSubmission(index uint64, label string)
	Drain() []session.Notification
}

var (
	_ Source    = (*surface.Manager)(nil)
	_ Submitter = (*wgpu.Queue)(nil)
	_ Notifier  = (*session.Session)(nil)
)

// Config holds the loop policy.
type Config struct {
	MissPolicy MissPolicy

	// MaxMisses defaults to DefaultMaxMisses.
	MaxMisses int

	Logger *slog.Logger
}

// Stats counts what the loop did.
type Stats struct {
	Iterations uint64
	Presented  uint64
	Missed     uint64
	Failed     uint64
	Refreshes  uint64
}

// Loop is the frame controller. A Loop must be driven from one goroutine.
type Loop struct {
	cfg    Config
	logger *slog.Logger

	source  Source
	encoder Encoder
	queue   Submitter
	events  Events
	notes   Notifier

	misses int
	stats  Stats
}

// New returns a loop over the given collaborators.
func New(cfg Config, source Source, encoder Encoder, queue Submitter, events Events, notes Notifier) *Loop {
	if cfg.MaxMisses <= 0 {
		cfg.MaxMisses = DefaultMaxMisses
	}
	return &Loop{
		cfg:     cfg,
		logger:  logging.Or(cfg.Logger),
		source:  source,
		encoder: encoder,
		queue:   queue,
		events:  events,
		notes:   notes,
	}
}

// Stats returns the counters accumulated so far.
func (l *Loop) Stats() Stats { return l.stats }

// Run iterates until the window asks to close, ctx is done, the device is
// lost or the miss policy gives up. A close request or a cancelled ctx
// returns nil.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil || l.events.ShouldClose() {
			l.logger.Debug("frame: loop finished",
				"iterations", l.stats.Iterations,
				"presented", l.stats.Presented,
				"missed", l.stats.Missed,
			)
			return nil
		}
		if err := l.Step(); err != nil {
			return err
		}
	}
}

// Step runs one iteration. Events are pumped and notifications drained
// on every path, including a skipped frame.
func (l *Loop) Step() error {
	l.stats.Iterations++
	if l.notes.Lost() {
		l.finish()
		return ErrDeviceLost
	}

	err := l.render()
	l.finish()
	if err != nil {
		return err
	}
	if l.notes.Lost() {
		return ErrDeviceLost
	}
	return nil
}

func (l *Loop) finish() {
	l.events.PollEvents()
	l.notes.Drain()
}

func (l *Loop) render() error {
	f, err := l.source.Acquire()
	if err != nil {
		l.notes.Observe(err)
		return l.miss(err)
	}
	l.misses = 0

	l.notes.BeginFrameScope()
	cb, err := l.encoder.Encode(f.View)
	l.notes.EndFrameScope()
	if err != nil {
		l.notes.Observe(err)
		l.source.Discard(f)
		l.stats.Failed++
		l.logger.Warn("frame: encode failed", "err", err)
		return nil
	}

	idx, err := l.queue.Submit(cb)
	if err != nil {
		cb.Release()
		l.notes.Observe(err)
		l.source.Discard(f)
		l.stats.Failed++
		l.logger.Warn("frame: submit failed", "err", err)
		return nil
	}
	l.notes.TrackSubmission(idx, "frame")

	if err := l.source.Present(f); err != nil {
		l.notes.Observe(err)
		l.stats.Failed++
		l.logger.Warn("frame: present failed", "err", err)
		return nil
	}
	l.stats.Presented++
	return nil
}

func (l *Loop) miss(err error) error {
	l.misses++
	l.stats.Missed++
	l.logger.Warn("frame: skipped", "err", err, "consecutive", l.misses)

	if l.misses < l.cfg.MaxMisses {
		return nil
	}
	switch l.cfg.MissPolicy {
	case MissPolicyReconfigure:
		l.misses = 0
		l.stats.Refreshes++
		if rerr := l.source.Refresh(); rerr != nil {
			return fmt.Errorf("frame: reconfigure after %d misses: %w", l.cfg.MaxMisses, rerr)
		}
		l.logger.Info("frame: surface reconfigured after persistent misses")
		return nil
	default:
		return fmt.Errorf("%w: %d in a row: %w", ErrPersistentMiss, l.misses, err)
	}
}
