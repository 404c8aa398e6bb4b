package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilCollectorsAreNoop(t *testing.T) {
	var c *Collectors
	assert.NotPanics(t, func() {
		c.Rendered(2)
		c.Gesture("wheel")
		c.AnimationStarted()
		c.TileLoaded(true)
		c.LevelChanged()
		c.FrameRate(60)
		c.SessionOpened()
		c.SessionClosed()
		c.Published("bounds")
		c.Dropped()
	})
}

func TestCollectors(t *testing.T) {
	c := New(prometheus.NewRegistry())
	c.Gesture("wheel")
	c.Gesture("wheel")
	c.Gesture("touch")
	c.TileLoaded(true)
	c.TileLoaded(false)
	c.FrameRate(59.5)
	c.SessionOpened()
	c.SessionOpened()
	c.SessionClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.gestures.WithLabelValues("wheel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.tilesLoaded.WithLabelValues("superseded")))
	assert.Equal(t, 59.5, testutil.ToFloat64(c.frameRate))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessions))
}
