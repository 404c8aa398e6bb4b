package gesture

import (
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
)

const (
	// DragBlock marks elements whose subtree must not start a map drag
	DragBlock = "mapview-drag-block"
	// ClickBlock marks elements whose subtree must not produce map clicks
	ClickBlock = "mapview-click-block"
)

// Element is the target of an input event, with access to its ancestors
type Element interface {
	HasClass(name string) bool
	Parent() Element
}

// Blocked reports whether el or one of its ancestors carries class
func Blocked(el Element, class string) bool {
	for e := el; e != nil; e = e.Parent() {
		if e.HasClass(class) {
			return true
		}
	}
	return false
}

// Node is a minimal Element
type Node struct {
	Classes []string `json:"classes,omitempty"`
	Up      *Node    `json:"parent,omitempty"`
}

func (n *Node) HasClass(name string) bool {
	for _, c := range n.Classes {
		if c == name {
			return true
		}
	}
	return false
}

func (n *Node) Parent() Element {
	if n.Up == nil {
		return nil
	}
	return n.Up
}

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

// PrimaryButton is the button number of the main mouse button
const PrimaryButton = 0

type PointerEvent struct {
	Kind   PointerKind
	Pixel  geo.Pixel
	Button int
	Time   time.Time
	Target Element
}

type TouchKind int

const (
	TouchStart TouchKind = iota
	TouchMove
	TouchEnd
)

type TouchEvent struct {
	Kind TouchKind
	// Touches are the fingers still on the surface after the event
	Touches []geo.Pixel
	// Changed are the fingers that moved, started or ended with this event
	Changed []geo.Pixel
	Time    time.Time
	Target  Element
}

type WheelEvent struct {
	Pixel  geo.Pixel
	DeltaY float64
	Meta   bool
	Ctrl   bool
	Time   time.Time
	Target Element
}

type WarningKind string

const (
	WarningWheel   WarningKind = "wheel"
	WarningFingers WarningKind = "fingers"
)
