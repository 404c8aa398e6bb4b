package gesture

import (
	"testing"
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"bitbucket.org/kleinnic74/mapview/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeView struct {
	vp     projection.Viewport
	target *float64
}

func (v *fakeView) Viewport() projection.Viewport {
	return v.vp
}

func (v *fakeView) AnimationTarget() (float64, bool) {
	if v.target == nil {
		return 0, false
	}
	return *v.target, true
}

func (v *fakeView) apply(actions []Action) {
	for _, a := range actions {
		if s, ok := a.(SetView); ok {
			v.vp.Center, v.vp.Zoom = s.Center, s.Zoom
		}
	}
}

var t0 = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func newMachine(opts Options) (*Machine, *fakeView) {
	view := &fakeView{vp: projection.Viewport{Center: geo.NewLatLng(0, 0), Zoom: 10, Width: 256, Height: 256}}
	if opts.MaxZoom == 0 {
		opts.MinZoom, opts.MaxZoom = 1, 18
	}
	return New(view, opts, nil), view
}

func down(p geo.Pixel, ms int) PointerEvent {
	return PointerEvent{Kind: PointerDown, Pixel: p, Time: at(ms)}
}

func move(p geo.Pixel, ms int) PointerEvent {
	return PointerEvent{Kind: PointerMove, Pixel: p, Time: at(ms)}
}

func up(p geo.Pixel, ms int) PointerEvent {
	return PointerEvent{Kind: PointerUp, Pixel: p, Time: at(ms)}
}

func TestBlocked(t *testing.T) {
	root := &Node{Classes: []string{ClickBlock}}
	child := &Node{Classes: []string{"marker"}, Up: &Node{Up: root}}
	assert.True(t, Blocked(child, ClickBlock))
	assert.False(t, Blocked(child, DragBlock))
	assert.False(t, Blocked(nil, DragBlock))
}

func TestMouseDragPans(t *testing.T) {
	m, view := newMachine(Options{})
	actions := m.HandlePointer(down(geo.Pixel{X: 100, Y: 100}, 0))
	assert.Equal(t, []Action{StopAnimation{}}, actions)
	assert.True(t, m.Dragging())

	actions = m.HandlePointer(move(geo.Pixel{X: 50, Y: 50}, 10))
	require.Len(t, actions, 1)
	set, ok := actions[0].(SetView)
	require.True(t, ok)
	assert.Equal(t, 10.0, set.Zoom)

	// the content follows the pointer: the center moves 50px right and down
	x, y := projection.TileCoords(set.Center, 10)
	assert.InDelta(t, 512+50.0/256, x, 1e-9)
	assert.InDelta(t, 512+50.0/256, y, 1e-9)
	assert.InDelta(t, projection.TileXToLon(512+50.0/256, 10), set.Center.Lng, 1e-9)
	assert.InDelta(t, projection.TileYToLat(512+50.0/256, 10), set.Center.Lat, 1e-9)

	view.apply(actions)
	actions = m.HandlePointer(move(geo.Pixel{X: 50, Y: 50}, 20))
	assert.Empty(t, actions, "no movement, no pan")
}

func TestMouseDragIsIncremental(t *testing.T) {
	m, view := newMachine(Options{})
	m.HandlePointer(down(geo.Pixel{X: 100, Y: 100}, 0))
	view.apply(m.HandlePointer(move(geo.Pixel{X: 90, Y: 100}, 10)))
	view.apply(m.HandlePointer(move(geo.Pixel{X: 80, Y: 100}, 20)))
	x, _ := projection.TileCoords(view.vp.Center, 10)
	assert.InDelta(t, 512+20.0/256, x, 1e-9)
}

func TestMouseDownIgnored(t *testing.T) {
	m, _ := newMachine(Options{})
	ev := down(geo.Pixel{X: 10, Y: 10}, 0)
	ev.Button = 2
	assert.Empty(t, m.HandlePointer(ev))

	ev = down(geo.Pixel{X: 10, Y: 10}, 0)
	ev.Target = &Node{Up: &Node{Classes: []string{DragBlock}}}
	assert.Empty(t, m.HandlePointer(ev))

	assert.Empty(t, m.HandlePointer(down(geo.Pixel{X: 300, Y: 10}, 0)), "outside of the viewport")
	assert.False(t, m.Dragging())
	assert.Empty(t, m.HandlePointer(move(geo.Pixel{X: 20, Y: 20}, 10)))
}

func TestClick(t *testing.T) {
	m, view := newMachine(Options{ClickEnabled: true})
	m.HandlePointer(down(geo.Pixel{X: 10, Y: 10}, 0))
	ev := up(geo.Pixel{X: 11, Y: 11}, 80)
	actions := m.HandlePointer(ev)
	require.Len(t, actions, 1)
	click := actions[0].(Click)
	assert.Equal(t, geo.Pixel{X: 11, Y: 11}, click.Pixel)
	assert.Equal(t, projection.PixelToGeo(view.vp, click.Pixel), click.Geo)
	assert.Equal(t, ev, click.Event)
	assert.False(t, m.Dragging())
}

func TestClickSuppressed(t *testing.T) {
	m, _ := newMachine(Options{ClickEnabled: true})
	m.HandlePointer(down(geo.Pixel{X: 10, Y: 10}, 0))
	ev := up(geo.Pixel{X: 10, Y: 10}, 80)
	ev.Target = &Node{Classes: []string{ClickBlock}}
	assert.Empty(t, m.HandlePointer(ev))

	m, _ = newMachine(Options{})
	m.HandlePointer(down(geo.Pixel{X: 10, Y: 10}, 0))
	assert.Empty(t, m.HandlePointer(up(geo.Pixel{X: 10, Y: 10}, 80)), "no click handler")
}

func TestDoubleClickZoomsAroundPixel(t *testing.T) {
	m, _ := newMachine(Options{})
	p := geo.Pixel{X: 128, Y: 128}
	m.HandlePointer(down(p, 0))
	m.HandlePointer(up(p, 60))
	actions := m.HandlePointer(down(p, 200))
	require.Len(t, actions, 2)
	assert.Equal(t, StopAnimation{}, actions[0])
	assert.Equal(t, Animate{Zoom: 11, Pivot: &p}, actions[1])
	assert.False(t, m.Dragging())

	// a third press starts over
	actions = m.HandlePointer(down(p, 350))
	assert.Equal(t, []Action{StopAnimation{}}, actions)
}

func TestSlowSecondClickIsNoDoubleClick(t *testing.T) {
	m, _ := newMachine(Options{})
	p := geo.Pixel{X: 128, Y: 128}
	m.HandlePointer(down(p, 0))
	m.HandlePointer(up(p, 60))
	actions := m.HandlePointer(down(p, 60+int(DoubleClickDelay/time.Millisecond)))
	assert.Equal(t, []Action{StopAnimation{}}, actions)
	assert.True(t, m.Dragging())
}

func TestDragDoesNotArmDoubleClick(t *testing.T) {
	m, _ := newMachine(Options{})
	m.HandlePointer(down(geo.Pixel{X: 100, Y: 100}, 0))
	m.HandlePointer(move(geo.Pixel{X: 150, Y: 100}, 500))
	m.HandlePointer(up(geo.Pixel{X: 150, Y: 100}, 1000))
	actions := m.HandlePointer(down(geo.Pixel{X: 150, Y: 100}, 1100))
	assert.Equal(t, []Action{StopAnimation{}}, actions)
}

func TestThrow(t *testing.T) {
	m, view := newMachine(Options{})
	m.HandlePointer(down(geo.Pixel{X: 100, Y: 100}, 0))
	view.apply(m.HandlePointer(move(geo.Pixel{X: 110, Y: 100}, 50)))
	view.apply(m.HandlePointer(move(geo.Pixel{X: 130, Y: 100}, 100)))
	vp := view.vp
	actions := m.HandlePointer(up(geo.Pixel{X: 140, Y: 100}, 110))
	require.Len(t, actions, 1)
	throw := actions[0].(Animate)
	assert.Equal(t, DiagonalThrowTime, throw.Duration)
	assert.Nil(t, throw.Pivot)
	assert.True(t, throw.Inertial)
	assert.Equal(t, 10.0, throw.Zoom)

	// 1px/ms for 1500ms with ease-out covers 750px
	cx, cy := projection.TileCoords(vp.Center, 10)
	x, y := projection.TileCoords(throw.Center, 10)
	assert.InDelta(t, cx-750.0/256, x, 1e-9)
	assert.InDelta(t, cy, y, 1e-9)
}

func TestSlowThrowIsShortened(t *testing.T) {
	m, view := newMachine(Options{})
	view.vp.Width, view.vp.Height = 2000, 2000
	m.HandlePointer(down(geo.Pixel{X: 100, Y: 100}, 0))
	view.apply(m.HandlePointer(move(geo.Pixel{X: 110, Y: 100}, 50)))
	view.apply(m.HandlePointer(move(geo.Pixel{X: 130, Y: 100}, 100)))
	actions := m.HandlePointer(up(geo.Pixel{X: 133, Y: 100}, 110))
	require.Len(t, actions, 1)
	// 0.3px/ms is about a tenth of the diagonal per second
	assert.Equal(t, MinThrowDuration, actions[0].(Animate).Duration)
}

func TestNoThrowAfterPause(t *testing.T) {
	m, view := newMachine(Options{ClickEnabled: true})
	m.HandlePointer(down(geo.Pixel{X: 100, Y: 100}, 0))
	view.apply(m.HandlePointer(move(geo.Pixel{X: 130, Y: 100}, 100)))
	assert.Empty(t, m.HandlePointer(up(geo.Pixel{X: 130, Y: 100}, 600)))
}

func TestMoveHistory(t *testing.T) {
	d := newDrag(geo.Pixel{}, at(0))
	d.track(geo.Pixel{X: 1}, at(10), false)
	assert.Len(t, d.history, 1, "samples closer than the interval are skipped")
	d.track(geo.Pixel{X: 2}, at(40), false)
	d.track(geo.Pixel{X: 3}, at(90), false)
	require.Len(t, d.history, 2)
	assert.Equal(t, geo.Pixel{X: 2}, d.history[0].pixel)
	assert.Equal(t, geo.Pixel{X: 3}, d.history[1].pixel)
	d.track(geo.Pixel{X: 4}, at(91), true)
	assert.Equal(t, geo.Pixel{X: 4}, d.history[1].pixel)

	v, ok := d.velocity()
	require.True(t, ok)
	assert.InDelta(t, 1, v.X, 1e-9)
}
