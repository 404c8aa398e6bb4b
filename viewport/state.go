// Package viewport holds the authoritative center/zoom/size record of one map
// viewport together with the tile layers kept alive across zoom transitions.
package viewport

import (
	"math"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/projection"
	"bitbucket.org/kleinnic74/mapview/tiles"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MaxStaleDistance is the number of zoom levels a stale layer may be away
// from the current rounded zoom before it is dropped
const MaxStaleDistance = 4

// Change describes the outcome of a mutation
type Change struct {
	// Changed is false when the request resolved to the current state
	Changed bool
	// LevelChanged is true when the rounded zoom, and thus the tile grid, changed
	LevelChanged bool
	Previous     projection.Viewport
}

// State is the viewport record. It is not safe for concurrent use; it is
// meant to be owned by the single goroutine driving a map.
type State struct {
	view    projection.Viewport
	grid    tiles.Grid
	stale   *orderedmap.OrderedMap[int, tiles.Layer]
	tracker *tiles.LoadTracker
}

func New(center geo.LatLng, zoom float64) *State {
	s := &State{
		stale: orderedmap.New[int, tiles.Layer](),
	}
	if !center.IsValid() {
		center = geo.LatLng{}
	}
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = 0
	}
	s.view = projection.Viewport{Center: LimitCenter(center, zoom, 0), Zoom: zoom}
	s.grid = tiles.Calculate(s.view)
	return s
}

// LimitCenter bounds c so that a viewport of the given height at zoom never
// shows anything beyond the poles. If the viewport is taller than the world
// the center collapses to the equator. Longitude is wrapped, never clamped.
// Values already in range are returned unchanged.
func LimitCenter(c geo.LatLng, zoom, height float64) geo.LatLng {
	lat := projection.ClampLatitude(c.Lat)
	if height > 0 {
		n := math.Exp2(zoom)
		half := height / 2 / projection.TileSize
		y := projection.LatToTileY(lat, zoom)
		switch {
		case 2*half >= n:
			lat = projection.TileYToLat(n/2, zoom)
		case y < half:
			lat = projection.TileYToLat(half, zoom)
		case y > n-half:
			lat = projection.TileYToLat(n-half, zoom)
		}
	}
	return geo.LatLng{Lat: lat, Lng: projection.WrapLongitude(c.Lng)}
}

func (s *State) Viewport() projection.Viewport {
	return s.view
}

func (s *State) Center() geo.LatLng {
	return s.view.Center
}

func (s *State) Zoom() float64 {
	return s.view.Zoom
}

// Grid returns the tile grid of the current viewport
func (s *State) Grid() tiles.Grid {
	return s.grid
}

// HasSize reports whether the viewport has been laid out
func (s *State) HasSize() bool {
	return s.view.HasSize()
}

// Resize changes the viewport size. Invalid sizes are stored as zero which
// marks the viewport as not ready. The center is re-limited for the new height.
func (s *State) Resize(width, height float64) Change {
	if !(width > 0) || math.IsInf(width, 0) {
		width = 0
	}
	if !(height > 0) || math.IsInf(height, 0) {
		height = 0
	}
	prev := s.view
	if prev.Width == width && prev.Height == height {
		return Change{Previous: prev}
	}
	s.view.Width, s.view.Height = width, height
	s.view.Center = LimitCenter(s.view.Center, s.view.Zoom, height)
	s.grid = tiles.Calculate(s.view)
	return Change{Changed: true, Previous: prev}
}

// SetCenterZoom is the single mutation point of the viewport. NaN or
// infinite values fall back to the current ones and the center is limited
// to the valid area. When the rounded zoom changes the previous grid is
// kept as a stale layer and a new load generation starts.
func (s *State) SetCenterZoom(center geo.LatLng, zoom float64) Change {
	prev := s.view
	if math.IsNaN(center.Lat) || math.IsInf(center.Lat, 0) {
		center.Lat = prev.Center.Lat
	}
	if math.IsNaN(center.Lng) || math.IsInf(center.Lng, 0) {
		center.Lng = prev.Center.Lng
	}
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = prev.Zoom
	}
	center = LimitCenter(center, zoom, prev.Height)
	if center == prev.Center && zoom == prev.Zoom {
		return Change{Previous: prev}
	}

	next := prev.WithCenterZoom(center, zoom)
	nextGrid := tiles.Calculate(next)
	levelChanged := nextGrid.Zoom != s.grid.Zoom
	if levelChanged {
		if prev.HasSize() {
			old := s.grid.Layer
			s.stale.Delete(old.Zoom)
			s.stale.Set(old.Zoom, old)
		}
		s.tracker = tiles.NewLoadTracker(nextGrid.Keys())
	}
	s.view, s.grid = next, nextGrid
	s.prune()
	return Change{Changed: true, LevelChanged: levelChanged, Previous: prev}
}

func (s *State) prune() {
	var drop []int
	for pair := s.stale.Oldest(); pair != nil; pair = pair.Next() {
		d := pair.Key - s.grid.Zoom
		if d == 0 || d > MaxStaleDistance || d < -MaxStaleDistance {
			drop = append(drop, pair.Key)
		}
	}
	for _, z := range drop {
		s.stale.Delete(z)
	}
}

// StaleLayers returns the retained layers, oldest first
func (s *State) StaleLayers() []tiles.Layer {
	layers := make([]tiles.Layer, 0, s.stale.Len())
	for pair := s.stale.Oldest(); pair != nil; pair = pair.Next() {
		layers = append(layers, pair.Value)
	}
	return layers
}

// MarkLoaded records that the tile with key finished loading. tracked is
// false for keys of a superseded generation. cleared is true when this was
// the last missing tile and the stale layers were dropped.
func (s *State) MarkLoaded(key string) (tracked, cleared bool) {
	if s.tracker == nil || !s.tracker.MarkLoaded(key) {
		return false, false
	}
	if s.tracker.Done() && s.stale.Len() > 0 {
		s.stale = orderedmap.New[int, tiles.Layer]()
		return true, true
	}
	return true, false
}

// Pending returns the number of tiles of the current generation not loaded yet
func (s *State) Pending() int {
	if s.tracker == nil {
		return 0
	}
	return s.tracker.Missing()
}
