package gesture

import (
	"math"
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/projection"
	"go.uber.org/zap"
)

// pinch is the baseline of a two finger gesture
type pinch struct {
	origin    projection.Viewport
	startMid  geo.Pixel
	startDist float64
	lastMid   geo.Pixel
	lastZoom  float64
}

type touchSession struct {
	// start is the position the single finger went down at
	start geo.Pixel
	drag  *drag
	pinch *pinch
	// pinched is set once a second finger joined, the session can no longer be a tap
	pinched bool
}

func (m *Machine) HandleTouch(ev TouchEvent) []Action {
	switch ev.Kind {
	case TouchStart:
		return m.touchStart(ev)
	case TouchMove:
		return m.touchMove(ev)
	case TouchEnd:
		return m.touchEnd(ev)
	}
	return nil
}

func (m *Machine) touchStart(ev TouchEvent) []Action {
	if Blocked(ev.Target, DragBlock) {
		return nil
	}
	vp := m.view.Viewport()
	switch len(ev.Touches) {
	case 1:
		p := ev.Touches[0]
		if !inside(vp, p) {
			return nil
		}
		m.touch = &touchSession{start: p}
		if m.opts.TwoFingerDrag {
			return nil
		}
		actions := []Action{StopAnimation{}}
		if !m.lastTap.IsZero() && ev.Time.Sub(m.lastTap) < DoubleClickDelay {
			m.lastTap = time.Time{}
			m.log.Debug("Double tap", zap.Object("pixel", p))
			return append(actions, m.zoomIn(vp, p))
		}
		m.lastTap = ev.Time
		m.touch.drag = newDrag(p, ev.Time)
		return actions
	case 2:
		actions := []Action{StopAnimation{}}
		if m.opts.TwoFingerDrag {
			actions = append(actions, ClearWarning{})
		}
		m.beginPinch(vp, ev.Touches[0], ev.Touches[1])
		return actions
	}
	return nil
}

func (m *Machine) beginPinch(vp projection.Viewport, a, b geo.Pixel) {
	if m.touch == nil {
		m.touch = &touchSession{start: a}
	}
	mid := a.Mid(b)
	m.touch.drag = nil
	m.touch.pinched = true
	m.touch.pinch = &pinch{
		origin:    vp,
		startMid:  mid,
		startDist: math.Max(a.DistanceTo(b), 1),
		lastMid:   mid,
		lastZoom:  vp.Zoom,
	}
	m.log.Debug("Pinch started", zap.Object("mid", mid), zap.Float64("zoom", vp.Zoom))
}

func (m *Machine) touchMove(ev TouchEvent) []Action {
	s := m.touch
	if s == nil {
		return nil
	}
	switch {
	case len(ev.Touches) == 1 && s.pinch == nil:
		if m.opts.TwoFingerDrag {
			if inside(m.view.Viewport(), ev.Touches[0]) {
				return []Action{Warning{Kind: WarningFingers}}
			}
			return nil
		}
		if s.drag == nil {
			return nil
		}
		return m.pan(s.drag, ev.Touches[0], ev.Time)
	case len(ev.Touches) == 2 && s.pinch != nil:
		return m.pinchTo(s.pinch, ev.Touches[0], ev.Touches[1])
	}
	return nil
}

// pinchTo derives the view from the baseline: the zoom follows the finger
// distance and the position under the start midpoint follows the midpoint.
func (m *Machine) pinchTo(p *pinch, a, b geo.Pixel) []Action {
	mid := a.Mid(b)
	zoom := m.clampZoom(p.origin.Zoom + math.Log2(a.DistanceTo(b)/p.startDist))
	p.lastMid, p.lastZoom = mid, zoom
	return []Action{SetView{
		Center: projection.MoveAnchor(p.origin, p.startMid, mid, zoom),
		Zoom:   zoom,
	}}
}

func (m *Machine) touchEnd(ev TouchEvent) []Action {
	s := m.touch
	if s == nil {
		return nil
	}
	switch len(ev.Touches) {
	case 0:
		m.touch = nil
		if m.opts.TwoFingerDrag {
			return []Action{ClearWarning{}}
		}
		if s.drag == nil {
			return nil
		}
		release := s.drag.last
		if len(ev.Changed) > 0 {
			release = ev.Changed[0]
		}
		recentPinch := !m.secondTouchEnd.IsZero() && ev.Time.Sub(m.secondTouchEnd) <= PinchReleaseThrowDelay
		m.secondTouchEnd = time.Time{}
		if release.DistanceTo(s.start) <= ClickTolerance {
			if s.pinched {
				return nil
			}
			return m.click(release, ev.Target, ev)
		}
		if recentPinch {
			return nil
		}
		return m.throw(s.drag, release, ev.Time)
	case 1:
		if s.pinch == nil {
			return nil
		}
		return m.endPinch(s, ev.Touches[0], ev.Time)
	case 2:
		m.beginPinch(m.view.Viewport(), ev.Touches[0], ev.Touches[1])
	}
	return nil
}

// endPinch resumes a single finger drag and, with zoom snap, settles the zoom
// on an integer level in the direction of the pinch.
func (m *Machine) endPinch(s *touchSession, remaining geo.Pixel, at time.Time) []Action {
	p := s.pinch
	s.pinch = nil
	s.start = remaining
	s.drag = newDrag(remaining, at)
	m.secondTouchEnd = at
	if !m.opts.ZoomSnap {
		return nil
	}
	startZoom := p.origin.Zoom
	var target float64
	switch {
	case m.opts.TwoFingerDrag && math.Round(startZoom) == math.Round(p.lastZoom):
		target = math.Round(p.lastZoom)
	case p.lastZoom > startZoom:
		target = math.Ceil(p.lastZoom)
	default:
		target = math.Floor(p.lastZoom)
	}
	pivot := p.lastMid
	return []Action{Animate{Zoom: m.clampZoom(target), Pivot: &pivot}}
}
