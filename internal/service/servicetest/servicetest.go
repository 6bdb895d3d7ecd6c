// Package servicetest provides deterministic doubles for controller tests.
package servicetest

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"flowview/internal/diagram"
	"flowview/internal/domain"
	"flowview/internal/viewport"
)

type timer struct {
	due time.Time
	seq int
	fn  func()
}

// ManualScheduler runs tasks only when told to, on a clock that moves only
// through Advance.
type ManualScheduler struct {
	now    time.Time
	queue  []func()
	timers []timer
	seq    int
}

// NewManualScheduler starts the clock at a fixed instant
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Post implements service.Scheduler
func (s *ManualScheduler) Post(fn func()) {
	s.queue = append(s.queue, fn)
}

// After implements service.Scheduler
func (s *ManualScheduler) After(d time.Duration, fn func()) {
	s.seq++
	s.timers = append(s.timers, timer{due: s.now.Add(d), seq: s.seq, fn: fn})
}

// Now implements service.Scheduler
func (s *ManualScheduler) Now() time.Time {
	return s.now
}

// Pending returns the number of queued tasks and timers
func (s *ManualScheduler) Pending() (tasks, timers int) {
	return len(s.queue), len(s.timers)
}

// RunPending runs queued tasks, including ones they post, until the queue is empty
func (s *ManualScheduler) RunPending() {
	for len(s.queue) > 0 {
		fn := s.queue[0]
		s.queue = s.queue[1:]
		fn()
	}
}

// Advance moves the clock by d, firing due timers in due order. Queued tasks
// run before each timer.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now.Add(d)
	for {
		s.RunPending()
		sort.SliceStable(s.timers, func(i, j int) bool {
			if s.timers[i].due.Equal(s.timers[j].due) {
				return s.timers[i].seq < s.timers[j].seq
			}
			return s.timers[i].due.Before(s.timers[j].due)
		})
		if len(s.timers) == 0 || s.timers[0].due.After(target) {
			break
		}
		t := s.timers[0]
		s.timers = s.timers[1:]
		s.now = t.due
		t.fn()
	}
	s.now = target
	s.RunPending()
}

// Call is one recorded host command
type Call struct {
	Name    string
	ID      int
	Parents []int
}

func (c Call) String() string {
	if c.Parents != nil {
		return fmt.Sprintf("%s(%v, %d)", c.Name, c.Parents, c.ID)
	}
	return fmt.Sprintf("%s(%d)", c.Name, c.ID)
}

// FakeHost records everything the controller sends and answers snapshot
// requests on demand.
type FakeHost struct {
	mu sync.Mutex

	Snapshot   domain.Snapshot
	Err        error
	Manual     bool
	CommandErr error

	pending   []func(domain.Snapshot, error)
	Requests  int
	ReadyN    int
	ReloadedN int
	Selected  []int
	Calls     []Call
}

// RequestSnapshot implements service.Host. Unless Manual is set the current
// Snapshot is returned immediately.
func (h *FakeHost) RequestSnapshot(reply func(domain.Snapshot, error)) {
	h.mu.Lock()
	h.Requests++
	if h.Manual {
		h.pending = append(h.pending, reply)
		h.mu.Unlock()
		return
	}
	snap, err := h.Snapshot, h.Err
	h.mu.Unlock()
	reply(snap, err)
}

// Reply answers the i-th outstanding manual request with snap
func (h *FakeHost) Reply(i int, snap domain.Snapshot) {
	h.mu.Lock()
	reply := h.pending[i]
	h.mu.Unlock()
	reply(snap, nil)
}

// PendingRequests returns the number of unanswered manual requests
func (h *FakeHost) PendingRequests() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

func (h *FakeHost) Ready()    { h.ReadyN++ }
func (h *FakeHost) Reloaded() { h.ReloadedN++ }

func (h *FakeHost) SelectionChanged(id int) {
	h.Selected = append(h.Selected, id)
}

func (h *FakeHost) record(name string, parents []int, id int) error {
	h.Calls = append(h.Calls, Call{Name: name, ID: id, Parents: parents})
	return h.CommandErr
}

func (h *FakeHost) EditEvent(id int) error          { return h.record("EditEvent", nil, id) }
func (h *FakeHost) EditSwitchBranches(id int) error { return h.record("EditSwitchBranches", nil, id) }
func (h *FakeHost) EditForkBranches(id int) error   { return h.record("EditForkBranches", nil, id) }
func (h *FakeHost) AddEntryPoint(id int) error      { return h.record("AddEntryPoint", nil, id) }
func (h *FakeHost) AddEventBelow(id int) error      { return h.record("AddEventBelow", nil, id) }
func (h *FakeHost) Unlink(id int) error             { return h.record("Unlink", nil, id) }
func (h *FakeHost) Link(id int) error               { return h.record("Link", nil, id) }
func (h *FakeHost) RemoveEntryPoint(id int) error   { return h.record("RemoveEntryPoint", nil, id) }

func (h *FakeHost) AddEventAbove(parents []int, id int) error {
	return h.record("AddEventAbove", parents, id)
}

func (h *FakeHost) RemoveEvent(parents []int, id int) error {
	return h.record("RemoveEvent", parents, id)
}

// FakeRenderer places every drawn node on a grid and records what it is asked
// to do.
type FakeRenderer struct {
	Frames     []diagram.Frame
	Transforms []viewport.Transform
	Durations  []time.Duration
	Marks      []diagram.Marks

	positions map[int]viewport.Point
}

// Render implements service.Renderer. Node i of the frame is placed at
// (100, 100*i).
func (r *FakeRenderer) Render(frame diagram.Frame) {
	r.Frames = append(r.Frames, frame)
	r.positions = make(map[int]viewport.Point, len(frame.Nodes))
	for i, n := range frame.Nodes {
		r.positions[n.ID] = viewport.Point{X: 100, Y: float64(100 * i)}
	}
}

// Locate implements viewport.Locator
func (r *FakeRenderer) Locate(id int) (viewport.Point, bool) {
	p, ok := r.positions[id]
	return p, ok
}

// ApplyTransform implements viewport.Animator
func (r *FakeRenderer) ApplyTransform(t viewport.Transform, d time.Duration) {
	r.Transforms = append(r.Transforms, t)
	r.Durations = append(r.Durations, d)
}

// Highlight implements selection.Highlighter
func (r *FakeRenderer) Highlight(m diagram.Marks) {
	r.Marks = append(r.Marks, m)
}

// LastFrame returns the most recent frame
func (r *FakeRenderer) LastFrame() diagram.Frame {
	if len(r.Frames) == 0 {
		return diagram.Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}

// Scrolls returns the transforms applied with a non-zero duration
func (r *FakeRenderer) Scrolls() []viewport.Transform {
	var out []viewport.Transform
	for i, d := range r.Durations {
		if d > 0 {
			out = append(out, r.Transforms[i])
		}
	}
	return out
}
