// Package animation interpolates a viewport towards a target center and zoom,
// one frame at a time.
package animation

import (
	"math"
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/projection"
	"go.uber.org/zap"
)

// Clock provides the current time
type Clock interface {
	Now() time.Time
}

// Frames schedules a callback on the next display refresh. The returned
// function cancels the callback if it did not run yet.
type Frames interface {
	RequestFrame(f func()) (cancel func())
}

// View is the viewport driven by the scheduler
type View interface {
	Viewport() projection.Viewport
	SetCenterZoom(center geo.LatLng, zoom float64, animating bool)
}

// Request asks the scheduler to move the view
type Request struct {
	Center geo.LatLng
	Zoom   float64
	// Pivot, when set, is kept over the same geographic position and Center is ignored
	Pivot    *geo.Pixel
	Animate  bool
	Duration time.Duration
}

// Target is the animation in flight
type Target struct {
	CenterStart  geo.LatLng
	ZoomStart    float64
	CenterTarget geo.LatLng
	ZoomTarget   float64
	Pivot        *geo.Pixel
	// Origin is the viewport the pivot refers to
	Origin    projection.Viewport
	StartTime time.Time
	Duration  time.Duration
}

// Ease is a quadratic ease-out
func Ease(t float64) float64 {
	return t * (2 - t)
}

// Step returns the interpolated center and zoom at now
func (t *Target) Step(now time.Time) (geo.LatLng, float64) {
	if t.StartTime.IsZero() || t.Duration <= 0 {
		return t.CenterStart, t.ZoomStart
	}
	progress := math.Max(float64(now.Sub(t.StartTime))/float64(t.Duration), 0)
	p := Ease(math.Min(progress, 1))
	zoom := t.ZoomStart + (t.ZoomTarget-t.ZoomStart)*p
	if t.Pivot != nil {
		return projection.ZoomAroundPixel(t.Origin, *t.Pivot, zoom), zoom
	}
	dLng := t.CenterTarget.Lng - t.CenterStart.Lng
	if dLng > 180 {
		dLng -= 360
	} else if dLng < -180 {
		dLng += 360
	}
	return geo.LatLng{
		Lat: t.CenterStart.Lat + (t.CenterTarget.Lat-t.CenterStart.Lat)*p,
		Lng: t.CenterStart.Lng + dLng*p,
	}, zoom
}

type Option func(s *Scheduler)

func WithZoomRange(min, max float64) Option {
	return func(s *Scheduler) {
		s.minZoom, s.maxZoom = min, max
	}
}

// WithNotifications registers the callbacks fired once per animation session
func WithNotifications(start, stop func()) Option {
	return func(s *Scheduler) {
		if start != nil {
			s.onStart = start
		}
		if stop != nil {
			s.onStop = stop
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Scheduler) {
		s.log = log
	}
}

// Scheduler moves a View towards at most one target at a time. A new target
// supersedes the current one and starts where the view currently is. It must
// be used from the goroutine running the frame callbacks.
type Scheduler struct {
	view   View
	clock  Clock
	frames Frames

	minZoom, maxZoom float64
	onStart, onStop  func()
	log              *zap.Logger

	target  *Target
	cancel  func()
	started bool
}

func New(view View, clock Clock, frames Frames, options ...Option) *Scheduler {
	s := &Scheduler{
		view:    view,
		clock:   clock,
		frames:  frames,
		minZoom: 1,
		maxZoom: 18,
		onStart: func() {},
		onStop:  func() {},
		log:     zap.NewNop(),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

func (s *Scheduler) IsAnimating() bool {
	return s.target != nil
}

// Target returns the animation in flight, if any
func (s *Scheduler) Target() (Target, bool) {
	if s.target == nil {
		return Target{}, false
	}
	return *s.target, true
}

// SetCenterZoomTarget clamps the requested zoom and either applies it
// immediately or starts (or re-targets) an animation.
func (s *Scheduler) SetCenterZoomTarget(r Request) {
	current := s.view.Viewport()
	zoom := r.Zoom
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = current.Zoom
	}
	zoom = projection.Clamp(zoom, s.minZoom, s.maxZoom)
	center := r.Center
	if r.Pivot != nil {
		center = projection.ZoomAroundPixel(current, *r.Pivot, zoom)
	}
	if !r.Animate {
		s.StopAnimating()
		s.view.SetCenterZoom(center, zoom, false)
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.target = &Target{
		CenterStart:  current.Center,
		ZoomStart:    current.Zoom,
		CenterTarget: center,
		ZoomTarget:   zoom,
		Pivot:        r.Pivot,
		Origin:       current,
		Duration:     r.Duration,
	}
	s.log.Debug("Animating", zap.Object("center", center), zap.Float64("zoom", zoom), zap.Duration("duration", r.Duration))
	s.schedule()
}

// StopAnimating cancels the animation in flight where it currently is
func (s *Scheduler) StopAnimating() {
	if s.target == nil {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.target = nil
	s.finish()
}

func (s *Scheduler) schedule() {
	s.cancel = s.frames.RequestFrame(s.tick)
}

func (s *Scheduler) finish() {
	if s.started {
		s.started = false
		s.onStop()
	}
}

func (s *Scheduler) tick() {
	s.cancel = nil
	t := s.target
	if t == nil {
		return
	}
	now := s.clock.Now()
	if t.StartTime.IsZero() {
		t.StartTime = now
		if !s.started {
			s.started = true
			s.onStart()
		}
		s.schedule()
		return
	}
	if !now.Before(t.StartTime.Add(t.Duration)) {
		s.target = nil
		s.view.SetCenterZoom(t.CenterTarget, t.ZoomTarget, false)
		s.finish()
		return
	}
	center, zoom := t.Step(now)
	s.view.SetCenterZoom(center, zoom, true)
	s.schedule()
}
