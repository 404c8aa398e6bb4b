package mapview

import (
	"time"

	"bitbucket.org/kleinnic74/mapview/tiles"
)

type timer struct {
	at        time.Time
	f         func()
	cancelled bool
}

// testHost is a manually driven Host: frames run on Frame, timers on Advance
type testHost struct {
	now    time.Time
	next   int
	frames map[int]func()
	timers []*timer
}

func newTestHost() *testHost {
	return &testHost{now: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (h *testHost) Now() time.Time {
	return h.now
}

func (h *testHost) RequestFrame(f func()) func() {
	if h.frames == nil {
		h.frames = make(map[int]func())
	}
	id := h.next
	h.next++
	h.frames[id] = f
	return func() { delete(h.frames, id) }
}

func (h *testHost) AfterFunc(d time.Duration, f func()) func() {
	t := &timer{at: h.now.Add(d), f: f}
	h.timers = append(h.timers, t)
	return func() { t.cancelled = true }
}

// Advance moves the clock and fires the timers that became due
func (h *testHost) Advance(d time.Duration) {
	h.now = h.now.Add(d)
	var keep []*timer
	var due []*timer
	for _, t := range h.timers {
		switch {
		case t.cancelled:
		case !t.at.After(h.now):
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	h.timers = keep
	for _, t := range due {
		t.f()
	}
}

// Frame runs the frame callbacks requested so far
func (h *testHost) Frame() int {
	run := h.frames
	h.frames = nil
	for _, f := range run {
		f()
	}
	return len(run)
}

// Animate runs frames every 16ms until no more frames are requested
func (h *testHost) Animate() {
	for h.Frame() > 0 {
		h.Advance(16 * time.Millisecond)
	}
}

type recorder struct {
	passes [][]tiles.Descriptor
	loaded func(key string)
}

func (r *recorder) Render(ds []tiles.Descriptor, loaded func(key string)) {
	r.passes = append(r.passes, ds)
	r.loaded = loaded
}

func (r *recorder) last() []tiles.Descriptor {
	if len(r.passes) == 0 {
		return nil
	}
	return r.passes[len(r.passes)-1]
}
