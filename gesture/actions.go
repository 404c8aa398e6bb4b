package gesture

import (
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
)

// Action is a request emitted by the Machine. It is one of StopAnimation,
// SetView, Animate, Click, Warning or ClearWarning.
type Action interface {
	action()
}

// StopAnimation interrupts the animation in flight
type StopAnimation struct{}

// SetView applies a center and zoom immediately
type SetView struct {
	Center geo.LatLng
	Zoom   float64
}

// Animate requests an animated transition. With a Pivot the center is derived
// from it. A zero Duration means the configured default. Inertial marks the
// continuation of a released drag.
type Animate struct {
	Center   geo.LatLng
	Zoom     float64
	Pivot    *geo.Pixel
	Duration time.Duration
	Inertial bool
}

type Click struct {
	Pixel geo.Pixel
	Geo   geo.LatLng
	Event interface{}
}

type Warning struct {
	Kind WarningKind
}

type ClearWarning struct{}

func (StopAnimation) action() {}
func (SetView) action()       {}
func (Animate) action()       {}
func (Click) action()         {}
func (Warning) action()       {}
func (ClearWarning) action()  {}
