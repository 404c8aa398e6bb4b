// Package metrics defines the prometheus collectors of the map engine.
// A nil *Collectors is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mapview"

type Collectors struct {
	renders         prometheus.Counter
	gestures        *prometheus.CounterVec
	animations      prometheus.Counter
	tilesLoaded     *prometheus.CounterVec
	staleLayers     prometheus.Histogram
	levelChanges    prometheus.Counter
	frameRate       prometheus.Gauge
	sessions        prometheus.Gauge
	eventsPublished *prometheus.CounterVec
	eventsDropped   prometheus.Counter
}

// New registers the collectors with reg. Use prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		renders: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "viewport",
			Name:      "renders_total",
			Help:      "Render passes handed to tile renderers",
		}),
		gestures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gesture",
			Name:      "events_total",
			Help:      "Input events processed by kind",
		}, []string{"kind"}),
		animations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "animation",
			Name:      "sessions_total",
			Help:      "Animation sessions started",
		}),
		tilesLoaded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tiles",
			Name:      "loaded_total",
			Help:      "Tile load notifications, by whether the tile belonged to the current generation",
		}, []string{"generation"}),
		staleLayers: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tiles",
			Name:      "stale_layers",
			Help:      "Number of stale layers rendered below the current one",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8},
		}),
		levelChanges: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "viewport",
			Name:      "level_changes_total",
			Help:      "Changes of the rounded zoom level",
		}),
		frameRate: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "runloop",
			Name:      "frames_per_second",
			Help:      "Frame rate achieved by the last measured host loop",
		}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Number of live map sessions",
		}),
		eventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Viewport events published, by name",
		}, []string{"name"}),
		eventsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events not delivered to a slow subscriber",
		}),
	}
}

func (c *Collectors) Rendered(staleLayers int) {
	if c == nil {
		return
	}
	c.renders.Inc()
	c.staleLayers.Observe(float64(staleLayers))
}

func (c *Collectors) Gesture(kind string) {
	if c == nil {
		return
	}
	c.gestures.WithLabelValues(kind).Inc()
}

func (c *Collectors) AnimationStarted() {
	if c == nil {
		return
	}
	c.animations.Inc()
}

func (c *Collectors) TileLoaded(current bool) {
	if c == nil {
		return
	}
	label := "superseded"
	if current {
		label = "current"
	}
	c.tilesLoaded.WithLabelValues(label).Inc()
}

func (c *Collectors) LevelChanged() {
	if c == nil {
		return
	}
	c.levelChanges.Inc()
}

func (c *Collectors) FrameRate(fps float64) {
	if c == nil {
		return
	}
	c.frameRate.Set(fps)
}

func (c *Collectors) SessionOpened() {
	if c == nil {
		return
	}
	c.sessions.Inc()
}

func (c *Collectors) SessionClosed() {
	if c == nil {
		return
	}
	c.sessions.Dec()
}

func (c *Collectors) Published(name string) {
	if c == nil {
		return
	}
	c.eventsPublished.WithLabelValues(name).Inc()
}

func (c *Collectors) Dropped() {
	if c == nil {
		return
	}
	c.eventsDropped.Inc()
}
