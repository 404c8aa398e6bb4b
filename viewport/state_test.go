package viewport

import (
	"fmt"
	"math"
	"testing"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/projection"
	"bitbucket.org/kleinnic74/mapview/tiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sized(center geo.LatLng, zoom, w, h float64) *State {
	s := New(center, zoom)
	s.Resize(w, h)
	return s
}

func TestLimitCenterIdempotent(t *testing.T) {
	centers := []geo.LatLng{
		geo.NewLatLng(0, 0),
		geo.NewLatLng(89, 10),
		geo.NewLatLng(-89, -10),
		geo.NewLatLng(84.9, 540.5),
		geo.NewLatLng(-60, -725),
		geo.NewLatLng(45, 180),
		geo.NewLatLng(45, -180),
	}
	for _, c := range centers {
		for _, z := range []float64{0, 1, 1.5, 3, 10.25, 18} {
			for _, h := range []float64{0, 256, 600, 4096} {
				t.Run(fmt.Sprintf("%s@%.2f/%v", c, z, h), func(t *testing.T) {
					once := LimitCenter(c, z, h)
					assert.Equal(t, once, LimitCenter(once, z, h))
					assert.True(t, once.Lng >= -180 && once.Lng <= 180)
				})
			}
		}
	}
}

func TestLimitCenterKeepsPolesOutOfView(t *testing.T) {
	c := LimitCenter(geo.NewLatLng(85, 0), 2, 512)
	y := projection.LatToTileY(c.Lat, 2)
	assert.InDelta(t, 1, y, 1e-9, "top edge of viewport must be the top of the world")

	c = LimitCenter(geo.NewLatLng(-85, 0), 2, 512)
	assert.InDelta(t, 3, projection.LatToTileY(c.Lat, 2), 1e-9)
}

func TestLimitCenterCollapsesWhenTallerThanWorld(t *testing.T) {
	c := LimitCenter(geo.NewLatLng(60, 12), 1, 1024)
	assert.Equal(t, 0.0, c.Lat)
	assert.Equal(t, 12.0, c.Lng)
}

func TestLimitCenterWrapsLongitude(t *testing.T) {
	assert.InDelta(t, -170, LimitCenter(geo.NewLatLng(0, 190), 5, 256).Lng, 1e-9)
	assert.InDelta(t, 170, LimitCenter(geo.NewLatLng(0, -190), 5, 256).Lng, 1e-9)
}

func TestSetCenterZoomNoop(t *testing.T) {
	s := sized(geo.NewLatLng(10, 10), 5, 256, 256)
	change := s.SetCenterZoom(geo.NewLatLng(10, 10), 5)
	assert.False(t, change.Changed)
}

func TestSetCenterZoomFractional(t *testing.T) {
	s := sized(geo.NewLatLng(10, 10), 5, 256, 256)
	change := s.SetCenterZoom(geo.NewLatLng(10, 10), 5.3)
	assert.True(t, change.Changed)
	assert.False(t, change.LevelChanged)
	assert.Equal(t, 5.3, s.Zoom())
	assert.Empty(t, s.StaleLayers())
}

func TestSetCenterZoomRecoversFromNaN(t *testing.T) {
	s := sized(geo.NewLatLng(10, 10), 5, 256, 256)
	change := s.SetCenterZoom(geo.NewLatLng(math.NaN(), 20), math.Inf(1))
	assert.True(t, change.Changed)
	assert.Equal(t, geo.NewLatLng(10, 20), s.Center())
	assert.Equal(t, 5.0, s.Zoom())

	change = s.SetCenterZoom(geo.NewLatLng(math.NaN(), math.NaN()), math.NaN())
	assert.False(t, change.Changed)
}

func TestStaleLayerLifecycle(t *testing.T) {
	s := sized(geo.NewLatLng(0, 0), 10, 256, 256)
	before := s.Grid().Layer

	change := s.SetCenterZoom(geo.NewLatLng(0, 0), 11)
	require.True(t, change.LevelChanged)
	stale := s.StaleLayers()
	require.Len(t, stale, 1)
	assert.Equal(t, before, stale[0])
	assert.Equal(t, 10, stale[0].Zoom)

	tracked, _ := s.MarkLoaded(before.Keys()[0])
	assert.False(t, tracked, "tiles of the previous generation are not tracked")

	keys := s.Grid().Keys()
	for i, key := range keys {
		tracked, cleared := s.MarkLoaded(key)
		assert.True(t, tracked)
		assert.Equal(t, i == len(keys)-1, cleared)
	}
	assert.Empty(t, s.StaleLayers())
	assert.Zero(t, s.Pending())
}

func TestStaleLayersDeduplicatedPerZoom(t *testing.T) {
	s := sized(geo.NewLatLng(0, 0), 10, 256, 256)
	s.SetCenterZoom(geo.NewLatLng(0, 0), 11)
	s.SetCenterZoom(geo.NewLatLng(0, 0), 12)
	s.SetCenterZoom(geo.NewLatLng(1, 1), 11)
	s.SetCenterZoom(geo.NewLatLng(1, 1), 12)

	// 11 was dropped while current and appended again when left
	assert.Equal(t, []int{10, 11}, staleZooms(s))
}

func TestStaleLayersPrunedWhenTooFar(t *testing.T) {
	s := sized(geo.NewLatLng(0, 0), 3, 256, 256)
	s.SetCenterZoom(geo.NewLatLng(0, 0), 4)
	s.SetCenterZoom(geo.NewLatLng(0, 0), 7)
	assert.Equal(t, []int{3, 4}, staleZooms(s))

	s.SetCenterZoom(geo.NewLatLng(0, 0), 8)
	assert.Equal(t, []int{4, 7}, staleZooms(s))
}

func staleZooms(s *State) []int {
	zooms := []int{}
	for _, l := range s.StaleLayers() {
		zooms = append(zooms, l.Zoom)
	}
	return zooms
}

func TestNoStaleLayerBeforeLayout(t *testing.T) {
	s := New(geo.NewLatLng(0, 0), 10)
	change := s.SetCenterZoom(geo.NewLatLng(0, 0), 12)
	assert.True(t, change.LevelChanged)
	assert.Empty(t, s.StaleLayers())
}

func TestResize(t *testing.T) {
	s := New(geo.NewLatLng(80, 0), 1)
	assert.False(t, s.HasSize())

	change := s.Resize(512, 512)
	assert.True(t, change.Changed)
	assert.True(t, s.HasSize())
	assert.Equal(t, 0.0, s.Center().Lat, "world at zoom 1 is 512px, center must collapse")
	assert.Equal(t, tiles.Layer{Zoom: 1, MinX: 0, MaxX: 2, MinY: 0, MaxY: 1}, s.Grid().Layer)

	change = s.Resize(-1, math.NaN())
	assert.True(t, change.Changed)
	assert.False(t, s.HasSize())
}
