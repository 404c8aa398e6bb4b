package tiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadTracker(t *testing.T) {
	tracker := NewLoadTracker([]string{"3/1/1", "3/2/1", "3/2/1"})
	assert.Equal(t, 2, tracker.Missing())
	assert.False(t, tracker.Done())

	assert.False(t, tracker.MarkLoaded("2/1/1"), "key of another generation must be ignored")
	assert.Equal(t, 2, tracker.Missing())

	assert.True(t, tracker.MarkLoaded("3/1/1"))
	assert.True(t, tracker.MarkLoaded("3/1/1"))
	assert.Equal(t, 1, tracker.Missing())

	assert.True(t, tracker.MarkLoaded("3/2/1"))
	assert.True(t, tracker.Done())
	assert.ElementsMatch(t, []string{"3/1/1", "3/2/1"}, tracker.Keys())
}

func TestEmptyTrackerIsDone(t *testing.T) {
	assert.True(t, NewLoadTracker(nil).Done())
}

func TestTemplateURL(t *testing.T) {
	urls := TemplateURL(OpenStreetMap)
	assert.Equal(t, "https://tile.openstreetmap.org/10/549/335.png", urls(549, 335, 10, 1))

	urls = TemplateURL("https://{s}.tiles.example.com/{z}/{x}/{y}{r}.png", "a", "b", "c")
	assert.Equal(t, "https://b.tiles.example.com/2/1/0.png", urls(1, 0, 2, 1))
	assert.Equal(t, "https://c.tiles.example.com/2/1/1@2x.png", urls(1, 1, 2, 2))
}

func TestResolveWrapsColumns(t *testing.T) {
	d := Descriptor{Tile: Tile{X: -1, Y: 0, Zoom: 1}}
	Resolve(&d, TemplateURL("{z}/{x}/{y}{r}"), []float64{1, 2})
	assert.Equal(t, "1/1/0", d.URL)
	assert.Equal(t, []Source{{DPR: 1, URL: "1/1/0"}, {DPR: 2, URL: "1/1/0@2x"}}, d.SrcSet)
	assert.Equal(t, -1, d.X, "placement column must not change")
}
