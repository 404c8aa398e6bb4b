package tiles

import (
	"fmt"
	"math"

	"bitbucket.org/kleinnic74/mapview/projection"
	"github.com/go-spatial/geom"
)

// Tile represents a map tile coordinates
type Tile struct {
	X, Y, Zoom int
}

// Key returns the identity string of a tile
func (t Tile) Key() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}

// Wrapped folds the column of t into [0, 2^zoom) so it addresses a real tile
func (t Tile) Wrapped() Tile {
	n := 1 << uint(t.Zoom)
	t.X = ((t.X % n) + n) % n
	return t
}

func (t Tile) String() string {
	return t.Key()
}

// Layer is a rectangular range of tile indices at one integer zoom level
type Layer struct {
	Zoom int `json:"zoom"`
	MinX int `json:"minX"`
	MaxX int `json:"maxX"`
	MinY int `json:"minY"`
	MaxY int `json:"maxY"`
}

// Each calls f for every tile of the layer, row by row
func (l Layer) Each(f func(t Tile)) {
	for y := l.MinY; y <= l.MaxY; y++ {
		for x := l.MinX; x <= l.MaxX; x++ {
			f(Tile{X: x, Y: y, Zoom: l.Zoom})
		}
	}
}

// Keys returns the identity strings of all tiles in the layer
func (l Layer) Keys() []string {
	var keys []string
	l.Each(func(t Tile) {
		keys = append(keys, t.Key())
	})
	return keys
}

// Descriptors positions every tile of the layer in the given viewport.
func (l Layer) Descriptors(v projection.Viewport, current bool) []Descriptor {
	scale := math.Exp2(v.Zoom - float64(l.Zoom))
	size := projection.TileSize * scale
	cx, cy := projection.TileCoords(v.Center, float64(l.Zoom))
	// Keep a layer recorded on the other side of the antimeridian next to the center
	n := math.Exp2(float64(l.Zoom))
	shift := math.Round((cx-float64(l.MinX+l.MaxX+1)/2)/n) * n
	m := v.Middle()
	var ds []Descriptor
	l.Each(func(t Tile) {
		ds = append(ds, Descriptor{
			Tile:    t,
			Key:     t.Key(),
			Left:    (float64(t.X)+shift-cx)*size + m.X,
			Top:     (float64(t.Y)-cy)*size + m.Y,
			Width:   size,
			Height:  size,
			Current: current,
		})
	})
	return ds
}

// Grid is the set of tiles needed to cover a viewport
type Grid struct {
	Layer
	CenterX      float64 `json:"centerX"`
	CenterY      float64 `json:"centerY"`
	Scale        float64 `json:"scale"`
	ScaledWidth  float64 `json:"scaledWidth"`
	ScaledHeight float64 `json:"scaledHeight"`
}

// Calculate computes the tile range covering v. Rows are clamped to the world,
// columns are not: they wrap around the antimeridian and are folded back
// when a tile is addressed.
func Calculate(v projection.Viewport) Grid {
	zoom := math.Round(v.Zoom)
	scale := math.Exp2(v.Zoom - zoom)
	g := Grid{
		Scale:        scale,
		ScaledWidth:  v.Width / scale,
		ScaledHeight: v.Height / scale,
	}
	g.Zoom = int(zoom)
	g.CenterX, g.CenterY = projection.TileCoords(v.Center, zoom)
	halfWidth := g.ScaledWidth / 2 / projection.TileSize
	halfHeight := g.ScaledHeight / 2 / projection.TileSize
	g.MinX = int(math.Floor(g.CenterX - halfWidth))
	g.MaxX = int(math.Floor(g.CenterX + halfWidth))
	maxRow := (1 << uint(g.Zoom)) - 1
	g.MinY = projection.Clamp(int(math.Floor(g.CenterY-halfHeight)), 0, maxRow)
	g.MaxY = projection.Clamp(int(math.Floor(g.CenterY+halfHeight)), 0, maxRow)
	return g
}

// Descriptor is the placement of one tile on screen for a render pass
type Descriptor struct {
	Tile    `json:"tile"`
	Key     string   `json:"key"`
	Left    float64  `json:"left"`
	Top     float64  `json:"top"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Current bool     `json:"current"`
	URL     string   `json:"url,omitempty"`
	SrcSet  []Source `json:"srcset,omitempty"`
}

// Source is a variant of a tile image for a device pixel ratio
type Source struct {
	DPR float64 `json:"dpr"`
	URL string  `json:"url"`
}

// Extent returns the screen rectangle covered by the tile
func (d Descriptor) Extent() *geom.Extent {
	return geom.NewExtent([2]float64{d.Left, d.Top}, [2]float64{d.Left + d.Width, d.Top + d.Height})
}
