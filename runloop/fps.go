package runloop

import (
	"time"
)

type Callback func(fps float64)

type Clock interface {
	Now() time.Time
}

// Fps measures the rate at which frames are run and reports it about once per second
type Fps struct {
	clock    Clock
	frames   int
	refTime  time.Time
	callback Callback
}

type systemClock struct {
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func NewSystemClock() Clock {
	return systemClock{}
}

func NewFps(callback Callback) *Fps {
	return NewFpsWithClock(systemClock{}, callback)
}

func NewFpsWithClock(clock Clock, callback Callback) *Fps {
	if callback == nil {
		callback = func(float64) {}
	}
	return &Fps{
		clock:    clock,
		refTime:  clock.Now(),
		callback: callback,
	}
}

// Reset starts a new measuring interval, used when frames resume after a pause
func (fps *Fps) Reset() {
	fps.refTime = fps.clock.Now()
	fps.frames = 0
}

// Frame counts one frame
func (fps *Fps) Frame() {
	now := fps.clock.Now()
	delta := now.Sub(fps.refTime)
	fps.frames = fps.frames + 1
	if delta > time.Second {
		intervalMs := float64(delta.Nanoseconds()) / float64(time.Millisecond.Nanoseconds())
		fps.callback(float64(fps.frames) * 1000. / intervalMs)
		fps.refTime = now
		fps.frames = 0
	}
}
