package gesture

import (
	"testing"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wheel(deltaY float64, ms int) WheelEvent {
	return WheelEvent{Pixel: geo.Pixel{X: 30, Y: 40}, DeltaY: deltaY, Time: at(ms)}
}

func wheelZoom(t *testing.T, actions []Action) float64 {
	t.Helper()
	require.Len(t, actions, 1)
	a, ok := actions[0].(Animate)
	require.True(t, ok, "expected Animate, got %T", actions[0])
	require.NotNil(t, a.Pivot)
	assert.Equal(t, geo.Pixel{X: 30, Y: 40}, *a.Pivot)
	return a.Zoom
}

func TestWheelZoom(t *testing.T) {
	m, view := newMachine(Options{})
	assert.Equal(t, 10.5, wheelZoom(t, m.HandleWheel(wheel(-75, 0))))
	assert.Equal(t, 9.0, wheelZoom(t, m.HandleWheel(wheel(150, 10))))

	target := 11.0
	view.target = &target
	assert.Equal(t, 11.5, wheelZoom(t, m.HandleWheel(wheel(-75, 20))), "adds to the zoom being animated to")
}

func TestWheelRequiresModifier(t *testing.T) {
	m, _ := newMachine(Options{MetaWheelZoom: true})
	assert.Equal(t, []Action{Warning{Kind: WarningWheel}}, m.HandleWheel(wheel(-75, 0)))

	ev := wheel(-75, 10)
	ev.Ctrl = true
	assert.Equal(t, 10.5, wheelZoom(t, m.HandleWheel(ev)))
	ev = wheel(-75, 20)
	ev.Meta = true
	assert.Equal(t, 10.5, wheelZoom(t, m.HandleWheel(ev)))
}

func TestWheelAtZoomLimits(t *testing.T) {
	m, view := newMachine(Options{})
	view.vp.Zoom = 18
	assert.Empty(t, m.HandleWheel(wheel(-10, 0)))
	assert.Equal(t, 17.0, wheelZoom(t, m.HandleWheel(wheel(150, 10))))

	view.vp.Zoom = 1
	assert.Empty(t, m.HandleWheel(wheel(10, 20)))
	view.vp.Zoom = 17.5
	assert.Equal(t, 18.0, wheelZoom(t, m.HandleWheel(wheel(-300, 30))), "clamped to max zoom")
	assert.Empty(t, m.HandleWheel(wheel(0, 40)))
}

func TestWheelSnapDebounce(t *testing.T) {
	m, view := newMachine(Options{ZoomSnap: true})
	assert.Equal(t, 11.0, wheelZoom(t, m.HandleWheel(wheel(-30, 0))))
	target := 11.0
	view.target = &target

	assert.Empty(t, m.HandleWheel(wheel(-30, 50)))
	assert.Empty(t, m.HandleWheel(wheel(-30, 100)))
	// accumulated 0.6 since the last step
	assert.Equal(t, 12.0, wheelZoom(t, m.HandleWheel(wheel(-30, 160))))
}

func TestWheelSnapResetsAfterQuietPeriod(t *testing.T) {
	m, _ := newMachine(Options{ZoomSnap: true})
	m.HandleWheel(wheel(-30, 0))
	assert.Empty(t, m.HandleWheel(wheel(-30, 50)))
	assert.Equal(t, 9.0, wheelZoom(t, m.HandleWheel(wheel(30, 400))), "the pending zoom-in was dropped")
}

func TestWheelSnapFromFractionalZoom(t *testing.T) {
	m, view := newMachine(Options{ZoomSnap: true})
	view.vp.Zoom = 10.3
	assert.Equal(t, 10.0, wheelZoom(t, m.HandleWheel(wheel(15, 0))))
	assert.Equal(t, 11.0, wheelZoom(t, m.HandleWheel(wheel(-15, 200))))
}
