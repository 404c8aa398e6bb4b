package gesture

import (
	"math"
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/projection"
	"go.uber.org/zap"
)

type sample struct {
	at    time.Time
	pixel geo.Pixel
}

// drag is a single pointer drag, from press to release
type drag struct {
	start   geo.Pixel
	last    geo.Pixel
	history []sample
}

func newDrag(p geo.Pixel, at time.Time) *drag {
	return &drag{start: p, last: p, history: []sample{{at, p}}}
}

// track records p in the move history if enough time passed since the last
// sample, or unconditionally with force. Only the two newest samples are kept.
func (d *drag) track(p geo.Pixel, at time.Time, force bool) {
	if n := len(d.history); n > 0 && !force && at.Sub(d.history[n-1].at) < MoveSampleInterval {
		return
	}
	d.history = append(d.history, sample{at, p})
	if len(d.history) > 2 {
		d.history = d.history[len(d.history)-2:]
	}
}

// velocity in pixels per millisecond over the move history
func (d *drag) velocity() (geo.Pixel, bool) {
	if len(d.history) < 2 {
		return geo.Pixel{}, false
	}
	a, b := d.history[0], d.history[1]
	ms := math.Max(float64(b.at.Sub(a.at))/float64(time.Millisecond), 1)
	return b.pixel.Sub(a.pixel).Scale(1 / ms), true
}

// pan moves the view so that the content follows the pointer
func (m *Machine) pan(d *drag, p geo.Pixel, at time.Time) []Action {
	delta := p.Sub(d.last)
	d.last = p
	d.track(p, at, false)
	if delta == (geo.Pixel{}) {
		return nil
	}
	vp := m.view.Viewport()
	return []Action{SetView{Center: projection.PixelToGeo(vp, vp.Middle().Sub(delta)), Zoom: vp.Zoom}}
}

// throw continues a released drag with its current velocity, slowing down to
// a stop. Fast throws last up to DiagonalThrowTime.
func (m *Machine) throw(d *drag, release geo.Pixel, at time.Time) []Action {
	d.track(release, at, true)
	v, ok := d.velocity()
	if !ok {
		return nil
	}
	speed := v.Len()
	if speed < MinThrowSpeed {
		return nil
	}
	vp := m.view.Viewport()
	diagonal := math.Hypot(vp.Width, vp.Height)
	if diagonal <= 0 {
		return nil
	}
	duration := time.Duration(float64(DiagonalThrowTime) * math.Min(1, speed*1000/diagonal))
	if duration < MinThrowDuration {
		duration = MinThrowDuration
	}
	// with ease-out the initial speed of the animation equals the release speed
	distance := v.Scale(float64(duration/time.Millisecond) / 2)
	m.log.Debug("Throw", zap.Float64("speed", speed), zap.Duration("duration", duration))
	return []Action{Animate{
		Center:   projection.PixelToGeo(vp, vp.Middle().Sub(distance)),
		Zoom:     vp.Zoom,
		Duration: duration,
		Inertial: true,
	}}
}
