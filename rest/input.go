package rest

import (
	"fmt"
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/gesture"
	"bitbucket.org/kleinnic74/mapview/mapview"
)

// inputEvent is the wire form of a pointer, touch or wheel event
type inputEvent struct {
	Type    string      `json:"type"`
	Kind    string      `json:"kind,omitempty"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	Button  int         `json:"button,omitempty"`
	Touches []geo.Pixel `json:"touches,omitempty"`
	Changed []geo.Pixel `json:"changed,omitempty"`
	DeltaY  float64     `json:"deltaY,omitempty"`
	Meta    bool        `json:"meta,omitempty"`
	Ctrl    bool        `json:"ctrl,omitempty"`
	// Time in Unix milliseconds, the time of arrival if 0
	Time   int64         `json:"time,omitempty"`
	Target *gesture.Node `json:"target,omitempty"`
}

var (
	pointerKinds = map[string]gesture.PointerKind{
		"down": gesture.PointerDown,
		"move": gesture.PointerMove,
		"up":   gesture.PointerUp,
	}
	touchKinds = map[string]gesture.TouchKind{
		"start": gesture.TouchStart,
		"move":  gesture.TouchMove,
		"end":   gesture.TouchEnd,
	}
)

func (e inputEvent) timestamp(now time.Time) time.Time {
	if e.Time == 0 {
		return now
	}
	return time.UnixMilli(e.Time)
}

func (e inputEvent) target() gesture.Element {
	if e.Target == nil {
		return nil
	}
	return e.Target
}

// dispatch returns a function feeding the event to a controller
func (e inputEvent) dispatch(now time.Time) (func(c *mapview.Controller), error) {
	at := e.timestamp(now)
	switch e.Type {
	case "pointer":
		kind, ok := pointerKinds[e.Kind]
		if !ok {
			return nil, fmt.Errorf("unknown pointer event kind '%s'", e.Kind)
		}
		ev := gesture.PointerEvent{Kind: kind, Pixel: geo.Pixel{X: e.X, Y: e.Y}, Button: e.Button, Time: at, Target: e.target()}
		return func(c *mapview.Controller) { c.HandlePointer(ev) }, nil
	case "touch":
		kind, ok := touchKinds[e.Kind]
		if !ok {
			return nil, fmt.Errorf("unknown touch event kind '%s'", e.Kind)
		}
		ev := gesture.TouchEvent{Kind: kind, Touches: e.Touches, Changed: e.Changed, Time: at, Target: e.target()}
		return func(c *mapview.Controller) { c.HandleTouch(ev) }, nil
	case "wheel":
		ev := gesture.WheelEvent{Pixel: geo.Pixel{X: e.X, Y: e.Y}, DeltaY: e.DeltaY, Meta: e.Meta, Ctrl: e.Ctrl, Time: at, Target: e.target()}
		return func(c *mapview.Controller) { c.HandleWheel(ev) }, nil
	default:
		return nil, fmt.Errorf("unknown input event type '%s'", e.Type)
	}
}
