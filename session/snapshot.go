package session

import (
	"context"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/mapview"
	"bitbucket.org/kleinnic74/mapview/projection"
	"bitbucket.org/kleinnic74/mapview/tiles"
)

// Snapshot is the observable state of a session at one point in time
type Snapshot struct {
	ID             string        `json:"id"`
	Center         geo.LatLng    `json:"center"`
	Zoom           float64       `json:"zoom"`
	Width          float64       `json:"width"`
	Height         float64       `json:"height"`
	Bounds         geo.Bounds    `json:"bounds"`
	IsAnimating    bool          `json:"isAnimating"`
	TargetZoom     *float64      `json:"targetZoom,omitempty"`
	MetersPerPixel float64       `json:"metersPerPixel"`
	PendingTiles   int           `json:"pendingTiles"`
	StaleLayers    []tiles.Layer `json:"staleLayers"`
	Warning        string        `json:"warning,omitempty"`
	// RenderPasses counts the tile layouts handed to the renderer so far
	RenderPasses int `json:"renderPasses"`
}

func (s *Session) Snapshot(ctx context.Context) (snap Snapshot, err error) {
	err = s.Do(ctx, func(c *mapview.Controller) {
		snap = snapshotOf(s.ID, c)
	})
	_, snap.RenderPasses = s.renders.Latest()
	return
}

func snapshotOf(id string, c *mapview.Controller) Snapshot {
	vp := c.Viewport()
	snap := Snapshot{
		ID:             id,
		Center:         vp.Center,
		Zoom:           vp.Zoom,
		Width:          vp.Width,
		Height:         vp.Height,
		IsAnimating:    c.IsAnimating(),
		MetersPerPixel: projection.MetersPerPixel(vp.Center.Lat, vp.Zoom),
		PendingTiles:   c.PendingTiles(),
		StaleLayers:    c.StaleLayers(),
		Warning:        c.Warning(),
	}
	if vp.HasSize() {
		snap.Bounds = c.Bounds()
	}
	if target, ok := c.AnimationTarget(); ok {
		snap.TargetZoom = &target
	}
	if snap.StaleLayers == nil {
		snap.StaleLayers = []tiles.Layer{}
	}
	return snap
}
