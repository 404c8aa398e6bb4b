package geo

import (
	"fmt"
	"math"

	"go.uber.org/zap/zapcore"
)

// LatLng is a geographic position in degrees
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func NewLatLng(lat, lng float64) LatLng {
	return LatLng{Lat: lat, Lng: lng}
}

// IsValid returns false if any of the coordinates is NaN or infinite
func (p LatLng) IsValid() bool {
	return isFinite(p.Lat) && isFinite(p.Lng)
}

func (p LatLng) String() string {
	return fmt.Sprintf("[%f;%f]", p.Lat, p.Lng)
}

func (p LatLng) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddFloat64("lat", p.Lat)
	enc.AddFloat64("lng", p.Lng)
	return nil
}

// Pixel is a screen offset in CSS pixels relative to the top-left corner of the viewport
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Pixel) Add(o Pixel) Pixel {
	return Pixel{p.X + o.X, p.Y + o.Y}
}

func (p Pixel) Sub(o Pixel) Pixel {
	return Pixel{p.X - o.X, p.Y - o.Y}
}

func (p Pixel) Scale(f float64) Pixel {
	return Pixel{p.X * f, p.Y * f}
}

func (p Pixel) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

func (p Pixel) DistanceTo(o Pixel) float64 {
	return p.Sub(o).Len()
}

// Mid returns the point half way between p and o
func (p Pixel) Mid(o Pixel) Pixel {
	return Pixel{(p.X + o.X) / 2, (p.Y + o.Y) / 2}
}

func (p Pixel) IsValid() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

func (p Pixel) String() string {
	return fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y)
}

func (p Pixel) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddFloat64("x", p.X)
	enc.AddFloat64("y", p.Y)
	return nil
}

// Bounds is the geographic box covered by a viewport
type Bounds struct {
	NE LatLng `json:"ne"`
	SW LatLng `json:"sw"`
}

// Contains reports whether p lies inside b. Boxes crossing the antimeridian
// (SW.Lng > NE.Lng) are handled.
func (b Bounds) Contains(p LatLng) bool {
	if p.Lat < b.SW.Lat || p.Lat > b.NE.Lat {
		return false
	}
	if b.SW.Lng <= b.NE.Lng {
		return p.Lng >= b.SW.Lng && p.Lng <= b.NE.Lng
	}
	return p.Lng >= b.SW.Lng || p.Lng <= b.NE.Lng
}

func (b Bounds) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if err := enc.AddObject("ne", b.NE); err != nil {
		return err
	}
	return enc.AddObject("sw", b.SW)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
