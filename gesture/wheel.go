package gesture

import (
	"math"
	"time"
)

type wheelState struct {
	// last is the time of the previous wheel event
	last time.Time
	// fired is the time a snapped zoom was last triggered
	fired time.Time
	accum float64
}

// HandleWheel zooms around the cursor. With zoom snap, a burst of wheel
// events triggers at most one zoom step per WheelDebounce window and the
// increments arriving in between are carried over to the next step.
func (m *Machine) HandleWheel(ev WheelEvent) []Action {
	if m.opts.MetaWheelZoom && !ev.Meta && !ev.Ctrl {
		return []Action{Warning{Kind: WarningWheel}}
	}
	inc := -ev.DeltaY / ScrollPixelsPerZoomLevel
	if inc == 0 || math.IsNaN(inc) || math.IsInf(inc, 0) {
		return nil
	}
	base := m.view.Viewport().Zoom
	if z, ok := m.view.AnimationTarget(); ok {
		base = z
	}
	if (base <= m.opts.MinZoom && inc < 0) || (base >= m.opts.MaxZoom && inc > 0) {
		return nil
	}
	target := base + inc
	if m.opts.ZoomSnap {
		w := &m.wheel
		if ev.Time.Sub(w.last) > WheelDebounce {
			w.accum = 0
		}
		w.last = ev.Time
		w.accum += inc
		if !w.fired.IsZero() && ev.Time.Sub(w.fired) < WheelDebounce {
			return nil
		}
		w.fired = ev.Time
		target = base + w.accum
		if w.accum < 0 {
			target = math.Floor(target)
		} else {
			target = math.Ceil(target)
		}
		w.accum = 0
	}
	pivot := ev.Pixel
	return []Action{Animate{Zoom: m.clampZoom(target), Pivot: &pivot}}
}
