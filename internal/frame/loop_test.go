package frame

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/beany/internal/session"
	"github.com/gogpu/beany/internal/surface"
)

// trace records the order of calls across every fake.
type trace struct{ calls []string }

func (t *trace) add(s string) { t.calls = append(t.calls, s) }

func (t *trace) String() string { return strings.Join(t.calls, " ") }

type fakeSource struct {
	tr          *trace
	misses      []bool // consumed per Acquire; true means miss
	missErr     error
	presentErr  error
	refreshErr  error
	outstanding int
}

func (s *fakeSource) Acquire() (*surface.Frame, error) {
	miss := false
	if len(s.misses) > 0 {
		miss = s.misses[0]
		s.misses = s.misses[1:]
	}
	if miss {
		s.tr.add("miss")
		err := s.missErr
		if err == nil {
			err = wgpu.ErrSurfaceOutdated
		}
		return nil, fmt.Errorf("%w: %w", surface.ErrFrameMissed, err)
	}
	s.tr.add("acquire")
	s.outstanding++
	return &surface.Frame{View: &wgpu.TextureView{}}, nil
}

func (s *fakeSource) Present(*surface.Frame) error {
	s.tr.add("present")
	s.outstanding--
	return s.presentErr
}

func (s *fakeSource) Discard(*surface.Frame) {
	s.tr.add("discard")
	s.outstanding--
}

func (s *fakeSource) Refresh() error {
	s.tr.add("refresh")
	return s.refreshErr
}

type fakeEncoder struct {
	tr  *trace
	err error
}

func (e *fakeEncoder) Encode(view *wgpu.TextureView) (*wgpu.CommandBuffer, error) {
	if view == nil {
		return nil, errors.New("nil view")
	}
	if e.err != nil {
		e.tr.add("encode-fail")
		return nil, e.err
	}
	e.tr.add("encode")
	return &wgpu.CommandBuffer{}, nil
}

type fakeQueue struct {
	tr    *trace
	index uint64
	err   error
}

func (q *fakeQueue) Submit(cbs ...*wgpu.CommandBuffer) (uint64, error) {
	if q.err != nil {
		q.tr.add("submit-fail")
		return 0, q.err
	}
	q.tr.add(fmt.Sprintf("submit%d", len(cbs)))
	q.index++
	return q.index, nil
}

type fakeEvents struct {
	tr         *trace
	closeAfter int // ShouldClose returns true after this many checks
	checks     int
	polls      int
}

func (e *fakeEvents) ShouldClose() bool {
	e.checks++
	return e.closeAfter > 0 && e.checks > e.closeAfter
}

func (e *fakeEvents) PollEvents() {
	e.polls++
	e.tr.add("poll")
}

type fakeNotes struct {
	tr       *trace
	lost     bool
	loseOn   error
	scopes   int
	tracked  []uint64
	drains   int
	observed []error
}

func (n *fakeNotes) Lost() bool { return n.lost }

func (n *fakeNotes) Observe(err error) error {
	n.observed = append(n.observed, err)
	if n.loseOn != nil && errors.Is(err, n.loseOn) {
		n.lost = true
	}
	return err
}

func (n *fakeNotes) BeginFrameScope() { n.scopes++ }
func (n *fakeNotes) EndFrameScope()   { n.scopes-- }

func (n *fakeNotes) TrackSubmission(index uint64, _ string) {
	n.tracked = append(n.tracked, index)
}

func (n *fakeNotes) Drain() []session.Notification {
	n.drains++
	n.tr.add("drain")
	return nil
}

type harness struct {
	tr     *trace
	source *fakeSource
	enc    *fakeEncoder
	queue  *fakeQueue
	events *fakeEvents
	notes  *fakeNotes
}

func newHarness(closeAfter int) *harness {
	tr := &trace{}
	return &harness{
		tr:     tr,
		source: &fakeSource{tr: tr},
		enc:    &fakeEncoder{tr: tr},
		queue:  &fakeQueue{tr: tr},
		events: &fakeEvents{tr: tr, closeAfter: closeAfter},
		notes:  &fakeNotes{tr: tr},
	}
}

func (h *harness) loop(cfg Config) *Loop {
	return New(cfg, h.source, h.enc, h.queue, h.events, h.notes)
}

func TestRunCloses(t *testing.T) {
	h := newHarness(3)
	l := h.loop(Config{})
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := strings.Repeat("acquire encode submit1 present poll drain ", 3)
	if got := h.tr.String() + " "; got != want {
		t.Errorf("calls = %q\nwant    %q", got, want)
	}
	st := l.Stats()
	if st.Iterations != 3 || st.Presented != 3 || st.Missed != 0 {
		t.Errorf("Stats() = %+v", st)
	}
	if len(h.notes.tracked) != 3 || h.notes.tracked[2] != 3 {
		t.Errorf("tracked submissions = %v, want [1 2 3]", h.notes.tracked)
	}
	if h.notes.scopes != 0 {
		t.Errorf("unbalanced frame scopes: %d", h.notes.scopes)
	}
	if h.source.outstanding != 0 {
		t.Errorf("%d frames outstanding", h.source.outstanding)
	}
}

func TestOneSubmitPerPresent(t *testing.T) {
	h := newHarness(10)
	h.source.misses = []bool{false, true, false, true, true, false}
	if err := h.loop(Config{}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	submits := 0
	for _, c := range h.tr.calls {
		switch c {
		case "submit1":
			submits++
			if submits > 1 {
				t.Fatalf("two submits without a present: %s", h.tr)
			}
		case "present":
			if submits != 1 {
				t.Fatalf("present without exactly one submit: %s", h.tr)
			}
			submits = 0
		}
	}
}

// A single miss skips that iteration only.
func TestSingleMissSkipsFrame(t *testing.T) {
	h := newHarness(3)
	h.source.misses = []bool{false, true, false}
	l := h.loop(Config{})
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "acquire encode submit1 present poll drain " +
		"miss poll drain " +
		"acquire encode submit1 present poll drain"
	if got := h.tr.String(); got != want {
		t.Errorf("calls = %q\nwant    %q", got, want)
	}
	st := l.Stats()
	if st.Presented != 2 || st.Missed != 1 {
		t.Errorf("Stats() = %+v, want 2 presented, 1 missed", st)
	}
	if h.queue.index != 2 {
		t.Errorf("submits = %d, want 2", h.queue.index)
	}
}

func TestPersistentMissExits(t *testing.T) {
	h := newHarness(0)
	h.source.misses = []bool{true, true, true, true}
	err := h.loop(Config{MaxMisses: 3}).Run(context.Background())
	if !errors.Is(err, ErrPersistentMiss) {
		t.Fatalf("Run() error = %v, want ErrPersistentMiss", err)
	}
	if !errors.Is(err, wgpu.ErrSurfaceOutdated) {
		t.Errorf("Run() error = %v, does not wrap the acquisition status", err)
	}
	if h.events.polls != 3 {
		t.Errorf("PollEvents() called %d times, want 3", h.events.polls)
	}
}

func TestMissCounterResets(t *testing.T) {
	h := newHarness(7)
	h.source.misses = []bool{true, true, false, true, true, false, false}
	if err := h.loop(Config{MaxMisses: 3}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
}

func TestPersistentMissReconfigures(t *testing.T) {
	h := newHarness(5)
	h.source.misses = []bool{true, true, false, true, true}
	l := h.loop(Config{MissPolicy: MissPolicyReconfigure, MaxMisses: 2})
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := l.Stats().Refreshes; got != 2 {
		t.Errorf("Refreshes = %d, want 2", got)
	}
	if !strings.Contains(h.tr.String(), "miss poll drain miss refresh poll drain acquire") {
		t.Errorf("calls = %s", h.tr)
	}
}

func TestReconfigureFailure(t *testing.T) {
	h := newHarness(0)
	h.source.misses = []bool{true}
	h.source.refreshErr = errors.New("surface gone")
	err := h.loop(Config{MissPolicy: MissPolicyReconfigure, MaxMisses: 1}).Run(context.Background())
	if !errors.Is(err, h.source.refreshErr) {
		t.Errorf("Run() error = %v, want refresh error", err)
	}
}

func TestEncodeFailureDiscards(t *testing.T) {
	h := newHarness(1)
	h.enc.err = errors.New("validation")
	l := h.loop(Config{})
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := "acquire encode-fail discard poll drain"
	if got := h.tr.String(); got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}
	if h.source.outstanding != 0 {
		t.Error("frame leaked after encode failure")
	}
	if l.Stats().Failed != 1 {
		t.Errorf("Failed = %d, want 1", l.Stats().Failed)
	}
}

func TestSubmitFailureDiscards(t *testing.T) {
	h := newHarness(1)
	h.queue.err = errors.New("queue full")
	if err := h.loop(Config{}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := "acquire encode submit-fail discard poll drain"
	if got := h.tr.String(); got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}
	if len(h.notes.tracked) != 0 {
		t.Error("failed submission tracked")
	}
}

func TestDeviceLostStops(t *testing.T) {
	h := newHarness(0)
	h.notes.loseOn = wgpu.ErrDeviceLost
	h.queue.err = fmt.Errorf("submit: %w", wgpu.ErrDeviceLost)

	err := h.loop(Config{}).Run(context.Background())
	if !errors.Is(err, ErrDeviceLost) {
		t.Fatalf("Run() error = %v, want ErrDeviceLost", err)
	}
	if h.queue.index != 0 {
		t.Error("submitted after device loss")
	}
	if h.notes.drains != 1 {
		t.Errorf("Drain() called %d times, want 1", h.notes.drains)
	}
}

func TestLostBeforeFrame(t *testing.T) {
	h := newHarness(0)
	h.notes.lost = true
	if err := h.loop(Config{}).Step(); !errors.Is(err, ErrDeviceLost) {
		t.Fatalf("Step() error = %v, want ErrDeviceLost", err)
	}
	if got := h.tr.String(); got != "poll drain" {
		t.Errorf("calls = %q, want only event pump and drain", got)
	}
}

func TestRunContextCancel(t *testing.T) {
	h := newHarness(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.loop(Config{}).Run(ctx); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
	if len(h.tr.calls) != 0 {
		t.Errorf("calls = %s, want none", h.tr)
	}
}

func TestMissPolicyString(t *testing.T) {
	tests := []struct {
		p    MissPolicy
		want string
	}{
		{MissPolicyExit, "exit"},
		{MissPolicyReconfigure, "reconfigure"},
		{MissPolicy(9), "MissPolicy(9)"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
