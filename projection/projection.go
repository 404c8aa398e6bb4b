// Package projection converts between geographic coordinates, fractional
// slippy tile coordinates and viewport pixels (Web Mercator).
package projection

import (
	"math"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"golang.org/x/exp/constraints"
)

const (
	TileSize = 256

	// MaxLatitude is the northern limit of the Web Mercator square
	MaxLatitude = 85.05112878

	earthCircumference = 40075016.686 // meters at equator
)

// Viewport is the geometry a projection is computed against
type Viewport struct {
	Center geo.LatLng `json:"center"`
	Zoom   float64    `json:"zoom"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
}

// HasSize reports whether the viewport has been laid out
func (v Viewport) HasSize() bool {
	return v.Width > 0 && v.Height > 0
}

// Middle returns the pixel at the center of the viewport
func (v Viewport) Middle() geo.Pixel {
	return geo.Pixel{X: v.Width / 2, Y: v.Height / 2}
}

func (v Viewport) WithCenterZoom(center geo.LatLng, zoom float64) Viewport {
	v.Center, v.Zoom = center, zoom
	return v
}

func Clamp[T constraints.Ordered](v, min, max T) T {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func ClampLatitude(lat float64) float64 {
	return Clamp(lat, -MaxLatitude, MaxLatitude)
}

// WrapLongitude folds lng into [-180,180]. Values already in range are returned unchanged.
func WrapLongitude(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

func LonToTileX(lon, zoom float64) float64 {
	return (lon + 180) / 360 * math.Exp2(zoom)
}

func LatToTileY(lat, zoom float64) float64 {
	r := ClampLatitude(lat) * math.Pi / 180
	return (1 - math.Log(math.Tan(r)+1/math.Cos(r))/math.Pi) / 2 * math.Exp2(zoom)
}

func TileXToLon(x, zoom float64) float64 {
	return x/math.Exp2(zoom)*360 - 180
}

func TileYToLat(y, zoom float64) float64 {
	n := math.Pi * (1 - 2*y/math.Exp2(zoom))
	return math.Atan(math.Sinh(n)) * 180 / math.Pi
}

// TileCoords returns the fractional tile coordinates of p at the given zoom
func TileCoords(p geo.LatLng, zoom float64) (x, y float64) {
	return LonToTileX(p.Lng, zoom), LatToTileY(p.Lat, zoom)
}

// FromTileCoords is the inverse of TileCoords. Latitude is clamped to the
// Mercator range, longitude wrapped into [-180,180].
func FromTileCoords(x, y, zoom float64) geo.LatLng {
	return geo.LatLng{
		Lat: ClampLatitude(TileYToLat(y, zoom)),
		Lng: WrapLongitude(TileXToLon(x, zoom)),
	}
}

// PixelToGeo returns the geographic position displayed at pixel p
func PixelToGeo(v Viewport, p geo.Pixel) geo.LatLng {
	cx, cy := TileCoords(v.Center, v.Zoom)
	m := v.Middle()
	return FromTileCoords(cx+(p.X-m.X)/TileSize, cy+(p.Y-m.Y)/TileSize, v.Zoom)
}

// GeoToPixel returns the pixel at which p is displayed
func GeoToPixel(v Viewport, p geo.LatLng) geo.Pixel {
	cx, cy := TileCoords(v.Center, v.Zoom)
	px, py := TileCoords(p, v.Zoom)
	m := v.Middle()
	return geo.Pixel{
		X: (px-cx)*TileSize + m.X,
		Y: (py-cy)*TileSize + m.Y,
	}
}

// MoveAnchor returns the center at newZoom that displays the position found
// under anchor in v at pixel target instead.
func MoveAnchor(v Viewport, anchor, target geo.Pixel, newZoom float64) geo.LatLng {
	cx, cy := TileCoords(v.Center, v.Zoom)
	m := v.Middle()
	scale := math.Exp2(newZoom - v.Zoom)
	ax := (cx + (anchor.X-m.X)/TileSize) * scale
	ay := (cy + (anchor.Y-m.Y)/TileSize) * scale
	return FromTileCoords(ax-(target.X-m.X)/TileSize, ay-(target.Y-m.Y)/TileSize, newZoom)
}

// ZoomAroundPixel returns the center at newZoom for which the position under
// pivot stays under pivot.
func ZoomAroundPixel(v Viewport, pivot geo.Pixel, newZoom float64) geo.LatLng {
	return MoveAnchor(v, pivot, pivot, newZoom)
}

// Bounds returns the geographic box covered by v
func Bounds(v Viewport) geo.Bounds {
	return geo.Bounds{
		NE: PixelToGeo(v, geo.Pixel{X: v.Width, Y: 0}),
		SW: PixelToGeo(v, geo.Pixel{X: 0, Y: v.Height}),
	}
}

// MetersPerPixel calculates the ground resolution at a given latitude and zoom level
func MetersPerPixel(lat, zoom float64) float64 {
	return earthCircumference * math.Cos(ClampLatitude(lat)*math.Pi/180) / (math.Exp2(zoom) * TileSize)
}
