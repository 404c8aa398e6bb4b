// Package runloop provides a single goroutine event loop that hosts map
// controllers: posted tasks, display refresh callbacks and timers all run on
// the loop goroutine, one at a time.
package runloop

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var ErrStopped = errors.New("run loop stopped")

const DefaultFPS = 60

type Option func(l *Loop)

func WithClock(clock Clock) Option {
	return func(l *Loop) {
		l.clock = clock
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Loop) {
		l.log = log
	}
}

// WithFrameRate reports the measured frame rate to callback
func WithFrameRate(callback Callback) Option {
	return func(l *Loop) {
		l.onRate = callback
	}
}

type Loop struct {
	period time.Duration
	clock  Clock
	log    *zap.Logger
	onRate Callback

	tasks chan func()
	done  chan struct{}

	// owned by the loop goroutine
	ticker  *time.Ticker
	frames  *orderedmap.OrderedMap[uint64, func()]
	running *orderedmap.OrderedMap[uint64, func()]
	frameID uint64
	fps     *Fps
}

func New(targetFps int, options ...Option) *Loop {
	if targetFps <= 0 {
		targetFps = DefaultFPS
	}
	l := &Loop{
		period: time.Second / time.Duration(targetFps),
		clock:  systemClock{},
		log:    zap.NewNop(),
		tasks:  make(chan func(), 64),
		done:   make(chan struct{}),
		frames: orderedmap.New[uint64, func()](),
	}
	for _, o := range options {
		o(l)
	}
	l.fps = NewFpsWithClock(l.clock, l.onRate)
	return l
}

// Run executes tasks and frames until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	defer l.stopTicker()
	l.log.Debug("Run loop started", zap.Duration("framePeriod", l.period))
	for {
		var tick <-chan time.Time
		if l.ticker != nil {
			tick = l.ticker.C
		}
		select {
		case <-ctx.Done():
			l.log.Debug("Run loop stopped")
			return ctx.Err()
		case f := <-l.tasks:
			f()
		case <-tick:
			l.frame()
		}
	}
}

// Done is closed once Run returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post queues f for execution on the loop. It returns false if the loop stopped.
func (l *Loop) Post(f func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- f:
		return true
	case <-l.done:
		return false
	}
}

// Do runs f on the loop and waits for it to complete
func (l *Loop) Do(ctx context.Context, f func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		f()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// RequestFrame runs f on the next frame. Must be called on the loop.
func (l *Loop) RequestFrame(f func()) (cancel func()) {
	id := l.frameID
	l.frameID++
	l.frames.Set(id, f)
	if l.ticker == nil {
		l.ticker = time.NewTicker(l.period)
		l.fps.Reset()
	}
	return func() {
		l.frames.Delete(id)
		if l.running != nil {
			l.running.Delete(id)
		}
	}
}

// AfterFunc runs f on the loop after d. The returned cancel must be called on the loop.
func (l *Loop) AfterFunc(d time.Duration, f func()) (cancel func()) {
	cancelled := false
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled {
				f()
			}
		})
	})
	return func() {
		cancelled = true
		t.Stop()
	}
}

func (l *Loop) frame() {
	if l.frames.Len() == 0 {
		l.stopTicker()
		return
	}
	run := l.frames
	l.frames = orderedmap.New[uint64, func()]()
	ids := make([]uint64, 0, run.Len())
	for pair := run.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	// callbacks may cancel others of the same frame
	l.running = run
	for _, id := range ids {
		if f, ok := run.Get(id); ok {
			f()
		}
	}
	l.running = nil
	l.fps.Frame()
}

func (l *Loop) stopTicker() {
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker = nil
	}
}
