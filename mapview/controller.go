// Package mapview is the composition root of a map viewport. A Controller
// owns the viewport state, drives animations and gestures, and tells a
// Renderer which tiles to paint.
//
// A Controller is single threaded: every method, and every callback the Host
// runs for it, must be called from the same goroutine.
package mapview

import (
	"math"

	"bitbucket.org/kleinnic74/mapview/animation"
	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/gesture"
	"bitbucket.org/kleinnic74/mapview/metrics"
	"bitbucket.org/kleinnic74/mapview/projection"
	"bitbucket.org/kleinnic74/mapview/tiles"
	"bitbucket.org/kleinnic74/mapview/viewport"
	"go.uber.org/zap"
)

// PropsEpsilon is the difference below which external props are considered
// to be already applied
const PropsEpsilon = 1e-4

type Option func(c *Controller)

func WithHandlers(h Handlers) Option {
	return func(c *Controller) {
		c.handlers = h
	}
}

func WithRenderer(r Renderer) Option {
	return func(c *Controller) {
		c.renderer = r
	}
}

func WithMetrics(m *metrics.Collectors) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithURLProvider overrides the provider built from the configured TileURL
func WithURLProvider(urls tiles.URLProvider) Option {
	return func(c *Controller) {
		c.urls = urls
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithCenterZoom sets the initial view
func WithCenterZoom(center geo.LatLng, zoom float64) Option {
	return func(c *Controller) {
		c.initialCenter, c.initialZoom = center, zoom
	}
}

type Controller struct {
	cfg      Config
	host     Host
	handlers Handlers
	renderer Renderer
	metrics  *metrics.Collectors
	urls     tiles.URLProvider
	log      *zap.Logger

	initialCenter geo.LatLng
	initialZoom   float64

	state    *viewport.State
	anim     *animation.Scheduler
	gestures *gesture.Machine

	laidOut       bool
	warning       string
	cancelWarning func()
}

// driven is the face of the controller the animation scheduler works on
type driven Controller

func (d *driven) Viewport() projection.Viewport {
	return d.state.Viewport()
}

func (d *driven) SetCenterZoom(center geo.LatLng, zoom float64, animating bool) {
	(*Controller)(d).commit(center, zoom, animating)
}

func New(cfg Config, host Host, options ...Option) (*Controller, error) {
	if err := cfg.Complete(); err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:         cfg,
		host:        host,
		log:         zap.NewNop(),
		initialZoom: cfg.MinZoom,
	}
	for _, o := range options {
		o(c)
	}
	if c.urls == nil {
		c.urls = cfg.urlProvider()
	}
	zoom := c.initialZoom
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = cfg.MinZoom
	}
	c.state = viewport.New(c.initialCenter, projection.Clamp(zoom, cfg.MinZoom, cfg.MaxZoom))
	c.anim = animation.New((*driven)(c), host, host,
		animation.WithZoomRange(cfg.MinZoom, cfg.MaxZoom),
		animation.WithNotifications(c.animationStarted, c.animationStopped),
		animation.WithLogger(c.log.Named("animation")))
	c.gestures = gesture.New(c, cfg.gestureOptions(c.handlers.Click != nil), c.log.Named("gesture"))
	return c, nil
}

func (c *Controller) Config() Config {
	return c.cfg
}

// Viewport returns the current, possibly mid-animation, viewport
func (c *Controller) Viewport() projection.Viewport {
	return c.state.Viewport()
}

func (c *Controller) Center() geo.LatLng {
	return c.state.Center()
}

func (c *Controller) Zoom() float64 {
	return c.state.Zoom()
}

func (c *Controller) IsAnimating() bool {
	return c.anim.IsAnimating()
}

// AnimationTarget returns the zoom of the animation in flight
func (c *Controller) AnimationTarget() (float64, bool) {
	t, ok := c.anim.Target()
	return t.ZoomTarget, ok
}

func (c *Controller) PixelToGeo(p geo.Pixel) geo.LatLng {
	return projection.PixelToGeo(c.state.Viewport(), p)
}

func (c *Controller) GeoToPixel(p geo.LatLng) geo.Pixel {
	return projection.GeoToPixel(c.state.Viewport(), p)
}

// Bounds returns the geographic box covered by the viewport
func (c *Controller) Bounds() geo.Bounds {
	return projection.Bounds(c.state.Viewport())
}

// Warning returns the text of the warning currently shown
func (c *Controller) Warning() string {
	return c.warning
}

// Resize sets the viewport size. The first valid size triggers the initial
// bounds notification and the first render.
func (c *Controller) Resize(width, height float64) {
	change := c.state.Resize(width, height)
	if !change.Changed || !c.state.HasSize() {
		return
	}
	initial := !c.laidOut
	c.laidOut = true
	c.log.Debug("Resized", zap.Float64("width", width), zap.Float64("height", height), zap.Bool("initial", initial))
	c.notifyBounds(initial, c.anim.IsAnimating())
	c.render()
}

// SetCenterZoomTarget moves the view, animated unless disabled by the target
// or the config. The zoom is clamped to the configured range.
func (c *Controller) SetCenterZoomTarget(t Target) {
	current := c.state.Center()
	center := t.Center
	if math.IsNaN(center.Lat) || math.IsInf(center.Lat, 0) {
		center.Lat = current.Lat
	}
	if math.IsNaN(center.Lng) || math.IsInf(center.Lng, 0) {
		center.Lng = current.Lng
	}
	pivot := t.Pivot
	if pivot != nil && !pivot.IsValid() {
		pivot = nil
	}
	animate := c.cfg.animate() && (t.Animate == nil || *t.Animate)
	duration := t.Duration
	if duration <= 0 {
		duration = c.cfg.AnimationDuration
	}
	c.anim.SetCenterZoomTarget(animation.Request{
		Center:   center,
		Zoom:     t.Zoom,
		Pivot:    pivot,
		Animate:  animate,
		Duration: duration,
	})
}

// SetProps reconciles externally desired center and zoom with the current
// state, or the state being animated to. A transition is only started if the
// difference is noticeable, so feeding back the controller's own
// notifications is harmless. It reports whether a transition was started.
func (c *Controller) SetProps(p Props) bool {
	vp := c.state.Viewport()
	center, zoom := vp.Center, vp.Zoom
	if t, ok := c.anim.Target(); ok {
		center, zoom = t.CenterTarget, t.ZoomTarget
	}
	wantZoom := zoom
	if p.Zoom != nil && !math.IsNaN(*p.Zoom) && !math.IsInf(*p.Zoom, 0) {
		wantZoom = projection.Clamp(*p.Zoom, c.cfg.MinZoom, c.cfg.MaxZoom)
	}
	wantCenter := center
	if p.Center != nil {
		if p.Center.IsValid() {
			wantCenter = viewport.LimitCenter(*p.Center, wantZoom, vp.Height)
		} else {
			c.log.Warn("Ignoring invalid center", zap.Object("center", *p.Center))
		}
	}
	if math.Abs(wantZoom-zoom) <= PropsEpsilon &&
		math.Abs(wantCenter.Lat-center.Lat) <= PropsEpsilon &&
		math.Abs(wantCenter.Lng-center.Lng) <= PropsEpsilon {
		return false
	}
	c.SetCenterZoomTarget(Target{Center: wantCenter, Zoom: wantZoom})
	return true
}

// ZoomIn zooms in by one level around the viewport center
func (c *Controller) ZoomIn() {
	c.zoomBy(1)
}

// ZoomOut zooms out by one level around the viewport center
func (c *Controller) ZoomOut() {
	c.zoomBy(-1)
}

func (c *Controller) zoomBy(levels float64) {
	center, zoom := c.state.Center(), c.state.Zoom()
	if t, ok := c.anim.Target(); ok {
		center, zoom = t.CenterTarget, t.ZoomTarget
	}
	c.SetCenterZoomTarget(Target{Center: center, Zoom: zoom + levels})
}

// StopAnimating freezes the view where it currently is
func (c *Controller) StopAnimating() {
	c.anim.StopAnimating()
}

// Close stops the animation and pending timers
func (c *Controller) Close() {
	c.anim.StopAnimating()
	if c.cancelWarning != nil {
		c.cancelWarning()
		c.cancelWarning = nil
	}
}

func (c *Controller) commit(center geo.LatLng, zoom float64, animating bool) {
	change := c.state.SetCenterZoom(center, zoom)
	if !change.Changed {
		return
	}
	if change.LevelChanged {
		c.metrics.LevelChanged()
		c.log.Debug("Zoom level changed",
			zap.Float64("from", change.Previous.Zoom),
			zap.Float64("to", c.state.Zoom()),
			zap.Int("staleLayers", len(c.state.StaleLayers())))
	}
	c.notifyBounds(false, animating)
	c.render()
}

func (c *Controller) notifyBounds(initial, animating bool) {
	if !c.state.HasSize() || c.handlers.BoundsChanged == nil {
		return
	}
	vp := c.state.Viewport()
	c.handlers.BoundsChanged(BoundsEvent{
		Center:      vp.Center,
		Zoom:        vp.Zoom,
		Bounds:      projection.Bounds(vp),
		Initial:     initial,
		IsAnimating: animating,
	})
}

func (c *Controller) animationStarted() {
	c.metrics.AnimationStarted()
	if c.handlers.AnimationStart != nil {
		c.handlers.AnimationStart()
	}
}

func (c *Controller) animationStopped() {
	if c.handlers.AnimationStop != nil {
		c.handlers.AnimationStop()
	}
}
