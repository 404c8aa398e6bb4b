package mapview

import (
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/tiles"
)

// WarningDelay is how long a warning stays visible after its last trigger
const WarningDelay = 300 * time.Millisecond

// BoundsEvent is emitted for every committed viewport change
type BoundsEvent struct {
	Center geo.LatLng `json:"center"`
	Zoom   float64    `json:"zoom"`
	Bounds geo.Bounds `json:"bounds"`
	// Initial is set only for the notification sent once the viewport is first laid out
	Initial     bool `json:"initial"`
	IsAnimating bool `json:"isAnimating"`
}

type ClickEvent struct {
	Event interface{} `json:"-"`
	Geo   geo.LatLng  `json:"latLng"`
	Pixel geo.Pixel   `json:"pixel"`
}

// Handlers are the callbacks of the embedding application. All are optional;
// a nil Click disables click detection.
type Handlers struct {
	BoundsChanged  func(BoundsEvent)
	Click          func(ClickEvent)
	AnimationStart func()
	AnimationStop  func()
	// Warning receives the text to show, or "" when the warning is cleared
	Warning func(text string)
}

// Host is the environment a controller runs in: a clock, a display refresh
// and timers. All callbacks must run on the goroutine that calls the
// controller.
type Host interface {
	Now() time.Time
	RequestFrame(f func()) (cancel func())
	AfterFunc(d time.Duration, f func()) (cancel func())
}

// Renderer paints tiles. loaded must be called once per descriptor when its
// image is ready.
type Renderer interface {
	Render(tiles []tiles.Descriptor, loaded func(key string))
}

// Target is a programmatic view request
type Target struct {
	Center geo.LatLng
	Zoom   float64
	// Pivot keeps the position under this pixel in place; Center is then ignored
	Pivot *geo.Pixel
	// Animate defaults to the configured value
	Animate *bool
	// Duration defaults to the configured animation duration
	Duration time.Duration
}

// Props are the externally desired center and zoom. Nil fields are not controlled.
type Props struct {
	Center *geo.LatLng `json:"center,omitempty"`
	Zoom   *float64    `json:"zoom,omitempty"`
}
