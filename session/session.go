// Package session hosts independent map viewports. Every session owns a run
// loop and a controller; the controller is only touched on its loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/events"
	"bitbucket.org/kleinnic74/mapview/mapview"
	"bitbucket.org/kleinnic74/mapview/metrics"
	"bitbucket.org/kleinnic74/mapview/render/svgview"
	"bitbucket.org/kleinnic74/mapview/runloop"
	"bitbucket.org/kleinnic74/mapview/store/boltstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var ErrSessionNotFound = errors.New("map session not found")

// Names of the events published for every session
const (
	EventBounds    = "bounds"
	EventClick     = "click"
	EventAnimation = "animation"
	EventWarning   = "warning"
	EventSession   = "session"
)

// ViewStore keeps the last settled view of sessions
type ViewStore interface {
	Save(id string, v boltstore.View) error
	Latest() (string, boltstore.View, error)
}

// Options of a new session. Explicit Center and Zoom win over a restored view.
type Options struct {
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Center  *geo.LatLng     `json:"center,omitempty"`
	Zoom    *float64        `json:"zoom,omitempty"`
	Restore bool            `json:"restore"`
	Config  *mapview.Config `json:"config,omitempty"`
}

type Option func(m *Manager)

func WithStore(store ViewStore) Option {
	return func(m *Manager) {
		m.views = store
	}
}

func WithMetrics(c *metrics.Collectors) Option {
	return func(m *Manager) {
		m.metrics = c
	}
}

func WithFrameRate(fps int) Option {
	return func(m *Manager) {
		m.fps = fps
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

type Manager struct {
	ctx     context.Context
	cfg     mapview.Config
	fps     int
	bus     *events.Stream
	views   ViewStore
	metrics *metrics.Collectors
	log     *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager. Session loops stop when ctx is done.
func NewManager(ctx context.Context, cfg mapview.Config, bus *events.Stream, options ...Option) *Manager {
	m := &Manager{
		ctx:      ctx,
		cfg:      cfg,
		fps:      runloop.DefaultFPS,
		bus:      bus,
		log:      zap.NewNop(),
		sessions: make(map[string]*Session),
	}
	for _, o := range options {
		o(m)
	}
	return m
}

type Session struct {
	ID      string
	Created time.Time

	loop    *runloop.Loop
	ctrl    *mapview.Controller
	renders *svgview.Recorder
	cancel  context.CancelFunc
}

func (m *Manager) Open(ctx context.Context, o Options) (*Session, error) {
	cfg := m.cfg
	if o.Config != nil {
		cfg = *o.Config
	}
	center, zoom := geo.LatLng{}, cfg.MinZoom
	if o.Restore && m.views != nil {
		from, v, err := m.views.Latest()
		switch {
		case err == nil:
			m.log.Debug("Restoring view", zap.String("from", from), zap.Object("center", v.Center), zap.Float64("zoom", v.Zoom))
			center, zoom = v.Center, v.Zoom
		case !errors.Is(err, boltstore.ErrNotFound):
			return nil, fmt.Errorf("restore view: %w", err)
		}
	}
	if o.Center != nil {
		center = *o.Center
	}
	if o.Zoom != nil {
		zoom = *o.Zoom
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	log := m.log.With(zap.String("session", id))
	loopCtx, cancel := context.WithCancel(m.ctx)
	s := &Session{
		ID:      id,
		Created: time.Now(),
		renders: &svgview.Recorder{},
		cancel:  cancel,
		loop: runloop.New(m.fps,
			runloop.WithLogger(log.Named("loop")),
			runloop.WithFrameRate(m.metrics.FrameRate)),
	}
	go s.loop.Run(loopCtx)

	// the controller is built to completion even if ctx ends meanwhile, the
	// closure owns err and s.ctrl until Do returns
	var err error
	if doErr := s.loop.Do(context.WithoutCancel(ctx), func() {
		s.ctrl, err = mapview.New(cfg, s.loop,
			mapview.WithHandlers(m.handlers(id)),
			mapview.WithRenderer(s.renders),
			mapview.WithMetrics(m.metrics),
			mapview.WithLogger(log.Named("map")),
			mapview.WithCenterZoom(center, zoom))
		if err == nil {
			s.ctrl.Resize(o.Width, o.Height)
		}
	}); doErr != nil {
		err = doErr
	}
	if err != nil {
		cancel()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.metrics.SessionOpened()
	m.bus.Publish(events.Event{Name: EventSession, Action: "opened", Session: id})
	log.Info("Map session opened", zap.Float64("width", o.Width), zap.Float64("height", o.Height))
	return s, nil
}

func (m *Manager) handlers(id string) mapview.Handlers {
	publish := func(name, action string, data interface{}) {
		m.bus.Publish(events.Event{Name: name, Action: action, Session: id, Data: data})
	}
	return mapview.Handlers{
		BoundsChanged: func(ev mapview.BoundsEvent) {
			action := "changed"
			if ev.Initial {
				action = "initial"
			}
			publish(EventBounds, action, ev)
		},
		Click: func(ev mapview.ClickEvent) {
			publish(EventClick, "clicked", ev)
		},
		AnimationStart: func() {
			publish(EventAnimation, "start", nil)
		},
		AnimationStop: func() {
			publish(EventAnimation, "stop", nil)
		},
		Warning: func(text string) {
			if text == "" {
				publish(EventWarning, "clear", nil)
				return
			}
			publish(EventWarning, "show", text)
		},
	}
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// IDs returns the ids of all open sessions, sorted
func (m *Manager) IDs() []string {
	m.mu.RLock()
	ids := maps.Keys(m.sessions)
	m.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.close(ctx)
	m.metrics.SessionClosed()
	m.bus.Publish(events.Event{Name: EventSession, Action: "closed", Session: id})
	m.log.Info("Map session closed", zap.String("session", id))
	return nil
}

// CloseAll closes every open session
func (m *Manager) CloseAll(ctx context.Context) {
	for _, id := range m.IDs() {
		if err := m.Close(ctx, id); err != nil {
			m.log.Warn("Failed to close session", zap.String("session", id), zap.Error(err))
		}
	}
}

func (s *Session) close(ctx context.Context) {
	// the loop may already be gone when the manager context ended
	_ = s.loop.Do(ctx, s.ctrl.Close)
	s.cancel()
	<-s.loop.Done()
}

// Do runs f with the session's controller on the session loop
func (s *Session) Do(ctx context.Context, f func(c *mapview.Controller)) error {
	return s.loop.Do(ctx, func() { f(s.ctrl) })
}
