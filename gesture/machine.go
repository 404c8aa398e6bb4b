// Package gesture turns raw pointer, touch and wheel input into view changes.
//
// The Machine holds no reference to the viewport state. It reads the
// current view through the View interface and returns Actions that the
// caller applies, in order.
package gesture

import (
	"math"
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/projection"
	"go.uber.org/zap"
)

const (
	DoubleClickDelay       = 300 * time.Millisecond
	MoveSampleInterval     = 40 * time.Millisecond
	PinchReleaseThrowDelay = 300 * time.Millisecond
	WheelDebounce          = 150 * time.Millisecond
	DiagonalThrowTime      = 1500 * time.Millisecond
	MinThrowDuration       = 300 * time.Millisecond

	// ClickTolerance is the distance in pixels a press may move and still be a click
	ClickTolerance = 2.0
	// ScrollPixelsPerZoomLevel is the wheel delta that zooms by one level
	ScrollPixelsPerZoomLevel = 150.0
	// MinThrowSpeed in pixels per millisecond
	MinThrowSpeed = 0.2
)

// View gives read access to the state a gesture acts on
type View interface {
	Viewport() projection.Viewport
	// AnimationTarget returns the zoom an animation in flight is heading to
	AnimationTarget() (zoom float64, ok bool)
}

type Options struct {
	MinZoom       float64
	MaxZoom       float64
	ZoomSnap      bool
	MetaWheelZoom bool
	TwoFingerDrag bool
	ClickEnabled  bool
}

// Machine tracks one viewport's interaction state. It is not safe for
// concurrent use.
type Machine struct {
	opts Options
	view View
	log  *zap.Logger

	mouse *drag
	touch *touchSession

	lastClick      time.Time
	lastTap        time.Time
	secondTouchEnd time.Time

	wheel wheelState
}

func New(view View, opts Options, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{opts: opts, view: view, log: log}
}

// SetOptions replaces the options. Gestures in progress keep going.
func (m *Machine) SetOptions(opts Options) {
	m.opts = opts
}

// Dragging reports whether a pointer or single finger drag is in progress
func (m *Machine) Dragging() bool {
	return m.mouse != nil || (m.touch != nil && m.touch.drag != nil)
}

// Pinching reports whether a two finger gesture is in progress
func (m *Machine) Pinching() bool {
	return m.touch != nil && m.touch.pinch != nil
}

func (m *Machine) HandlePointer(ev PointerEvent) []Action {
	switch ev.Kind {
	case PointerDown:
		return m.pointerDown(ev)
	case PointerMove:
		if m.mouse == nil {
			return nil
		}
		return m.pan(m.mouse, ev.Pixel, ev.Time)
	case PointerUp:
		return m.pointerUp(ev)
	}
	return nil
}

func (m *Machine) pointerDown(ev PointerEvent) []Action {
	vp := m.view.Viewport()
	if ev.Button != PrimaryButton || Blocked(ev.Target, DragBlock) || !inside(vp, ev.Pixel) {
		return nil
	}
	actions := []Action{StopAnimation{}}
	if !m.lastClick.IsZero() && ev.Time.Sub(m.lastClick) < DoubleClickDelay {
		m.lastClick = time.Time{}
		m.mouse = nil
		m.log.Debug("Double click", zap.Object("pixel", ev.Pixel))
		return append(actions, m.zoomIn(vp, ev.Pixel))
	}
	m.mouse = newDrag(ev.Pixel, ev.Time)
	return actions
}

func (m *Machine) pointerUp(ev PointerEvent) []Action {
	d := m.mouse
	if d == nil {
		return nil
	}
	m.mouse = nil
	if ev.Pixel.DistanceTo(d.start) <= ClickTolerance {
		m.lastClick = ev.Time
		return m.click(ev.Pixel, ev.Target, ev)
	}
	return m.throw(d, ev.Pixel, ev.Time)
}

func (m *Machine) click(p geo.Pixel, target Element, ev interface{}) []Action {
	if !m.opts.ClickEnabled || Blocked(target, ClickBlock) {
		return nil
	}
	return []Action{Click{Pixel: p, Geo: projection.PixelToGeo(m.view.Viewport(), p), Event: ev}}
}

func (m *Machine) zoomIn(vp projection.Viewport, pivot geo.Pixel) Action {
	return Animate{Zoom: math.Min(vp.Zoom+1, m.opts.MaxZoom), Pivot: &pivot}
}

func (m *Machine) clampZoom(z float64) float64 {
	return projection.Clamp(z, m.opts.MinZoom, m.opts.MaxZoom)
}

func inside(vp projection.Viewport, p geo.Pixel) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= vp.Width && p.Y <= vp.Height
}
