package projection

import (
	"fmt"
	"math"
	"testing"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"github.com/stretchr/testify/assert"
)

var points = []geo.LatLng{
	{Lat: 0, Lng: 0},
	{Lat: 48.2082, Lng: 16.3738},
	{Lat: -33.8688, Lng: 151.2093},
	{Lat: 85, Lng: -179.5},
	{Lat: -85, Lng: 179.5},
	{Lat: 51.507222, Lng: -0.1275},
}

func TestTileFormulas(t *testing.T) {
	assert.InDelta(t, 0.5, LonToTileX(0, 0), 1e-12)
	assert.InDelta(t, 0.5, LatToTileY(0, 0), 1e-12)
	assert.InDelta(t, 512, LonToTileX(0, 10), 1e-9)
	assert.InDelta(t, 0, LatToTileY(MaxLatitude, 3), 1e-6)
	assert.InDelta(t, 8, LatToTileY(-MaxLatitude, 3), 1e-6)
	for _, p := range points {
		for z := 0.0; z <= 18; z += 2.5 {
			assert.InDelta(t, p.Lng, TileXToLon(LonToTileX(p.Lng, z), z), 1e-9)
			assert.InDelta(t, p.Lat, TileYToLat(LatToTileY(p.Lat, z), z), 1e-9)
		}
	}
}

func TestLatToTileYNeverInfinite(t *testing.T) {
	assert.False(t, math.IsInf(LatToTileY(90, 5), 0))
	assert.False(t, math.IsInf(LatToTileY(-90, 5), 0))
}

func TestWrapLongitude(t *testing.T) {
	assert.Equal(t, 180.0, WrapLongitude(180))
	assert.Equal(t, -180.0, WrapLongitude(-180))
	assert.InDelta(t, -170, WrapLongitude(190), 1e-12)
	assert.InDelta(t, 170, WrapLongitude(-190), 1e-12)
	assert.InDelta(t, 10, WrapLongitude(730), 1e-12)
}

func TestPixelRoundTrip(t *testing.T) {
	centers := []geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 47.5, Lng: 8.2}, {Lat: -60, Lng: 120}}
	for _, c := range centers {
		for z := 1.0; z <= 18; z += 0.75 {
			v := Viewport{Center: c, Zoom: z, Width: 800, Height: 600}
			for _, p := range points {
				t.Run(fmt.Sprintf("%s@%.2f/%s", c, z, p), func(t *testing.T) {
					back := PixelToGeo(v, GeoToPixel(v, p))
					assert.InDelta(t, p.Lat, back.Lat, 1e-6)
					assert.InDelta(t, p.Lng, back.Lng, 1e-6)
				})
			}
		}
	}
}

func TestPixelToGeoCenter(t *testing.T) {
	v := Viewport{Center: geo.NewLatLng(48.2, 16.37), Zoom: 12, Width: 300, Height: 200}
	c := PixelToGeo(v, v.Middle())
	assert.InDelta(t, 48.2, c.Lat, 1e-9)
	assert.InDelta(t, 16.37, c.Lng, 1e-9)
	assert.Equal(t, geo.Pixel{X: 150, Y: 100}, GeoToPixel(v, v.Center))
}

func TestPixelToGeoClampsAndWraps(t *testing.T) {
	v := Viewport{Center: geo.NewLatLng(80, 179), Zoom: 2, Width: 1024, Height: 1024}
	p := PixelToGeo(v, geo.Pixel{X: 1024, Y: -5000})
	assert.InDelta(t, MaxLatitude, p.Lat, 1e-9)
	assert.True(t, p.Lng >= -180 && p.Lng <= 180, "longitude %f not wrapped", p.Lng)
}

func TestZoomAroundPixelKeepsPivot(t *testing.T) {
	v := Viewport{Center: geo.NewLatLng(48.2, 16.37), Zoom: 10, Width: 640, Height: 480}
	pivots := []geo.Pixel{{X: 0, Y: 0}, {X: 100, Y: 400}, {X: 320, Y: 240}, {X: 639, Y: 17}}
	for _, pivot := range pivots {
		for _, z1 := range []float64{4, 9.3, 10, 11, 13.7, 18} {
			under := PixelToGeo(v, pivot)
			center := ZoomAroundPixel(v, pivot, z1)
			after := GeoToPixel(v.WithCenterZoom(center, z1), under)
			assert.InDelta(t, pivot.X, after.X, 1, "pivot %s zoom %f", pivot, z1)
			assert.InDelta(t, pivot.Y, after.Y, 1, "pivot %s zoom %f", pivot, z1)
		}
	}
}

func TestZoomAroundMiddleKeepsCenter(t *testing.T) {
	v := Viewport{Center: geo.NewLatLng(0, 0), Zoom: 10, Width: 256, Height: 256}
	c := ZoomAroundPixel(v, v.Middle(), 11)
	assert.InDelta(t, 0, c.Lat, 1e-9)
	assert.InDelta(t, 0, c.Lng, 1e-9)
}

func TestMoveAnchorPans(t *testing.T) {
	v := Viewport{Center: geo.NewLatLng(0, 0), Zoom: 10, Width: 256, Height: 256}
	c := MoveAnchor(v, geo.Pixel{X: 100, Y: 100}, geo.Pixel{X: 50, Y: 50}, 10)
	assert.InDelta(t, TileXToLon(512+50.0/256, 10), c.Lng, 1e-9)
	assert.InDelta(t, TileYToLat(512+50.0/256, 10), c.Lat, 1e-9)
}

func TestBounds(t *testing.T) {
	v := Viewport{Center: geo.NewLatLng(0, 0), Zoom: 1, Width: 512, Height: 512}
	b := Bounds(v)
	assert.InDelta(t, MaxLatitude, b.NE.Lat, 1e-6)
	assert.InDelta(t, 180, b.NE.Lng, 1e-9)
	assert.InDelta(t, -MaxLatitude, b.SW.Lat, 1e-6)
	assert.InDelta(t, -180, b.SW.Lng, 1e-9)
}

func TestMetersPerPixel(t *testing.T) {
	assert.InDelta(t, 156543.03, MetersPerPixel(0, 0), 0.01)
	assert.InDelta(t, 156543.03/2, MetersPerPixel(60, 0), 0.01)
}
