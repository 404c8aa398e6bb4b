// Package svgview draws render passes as SVG documents, for debugging the
// tile layout of a map session without a browser.
package svgview

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"bitbucket.org/kleinnic74/mapview/tiles"
	svg "github.com/ajstarks/svgo"
	"github.com/go-spatial/geom"
	"github.com/muesli/reflow/wordwrap"
)

const (
	bannerWidth = 40
	lineHeight  = 18
)

var (
	strokeViewport = []string{`stroke="gray"`, `stroke-width="1px"`, `fill="none"`, `stroke-dasharray="4"`}
	strokeCurrent  = []string{`stroke="blue"`, `stroke-width="1px"`, `fill="none"`}
	strokeStale    = []string{`stroke="orange"`, `stroke-width="1px"`, `fill="none"`, `opacity="0.6"`}
	labelStyle     = `font-family="monospace" font-size="10px" fill="black"`
	bannerStyle    = `fill="black" opacity="0.6"`
	bannerText     = `font-family="sans-serif" font-size="14px" fill="white" text-anchor="middle"`
)

// TileView writes one render pass as SVG
type TileView struct {
	canvas *svg.SVG
}

func NewTileView(out io.Writer) *TileView {
	return &TileView{canvas: svg.New(out)}
}

func rectPath(e *geom.Extent) string {
	return fmt.Sprintf("M %f %f l 0 %f l %f 0 l 0 %f Z", e.MinX(), e.MinY(), e.YSpan(), e.XSpan(), -e.YSpan())
}

// Extent returns the rectangle covering the viewport and all tiles
func Extent(width, height float64, ds []tiles.Descriptor) *geom.Extent {
	e := geom.NewExtent([2]float64{0, 0}, [2]float64{width, height})
	for _, d := range ds {
		e.Add(d.Extent())
	}
	return e
}

// Write draws the tiles of a pass in paint order, the viewport outline and the
// warning banner if warning is not empty
func (v *TileView) Write(width, height float64, ds []tiles.Descriptor, warning string) {
	bounds := Extent(width, height, ds)
	v.canvas.Startpercent(100, 100, fmt.Sprintf(`viewBox="%f %f %f %f"`, bounds.MinX(), bounds.MinY(), bounds.XSpan(), bounds.YSpan()))
	for _, d := range ds {
		v.tile(d)
	}
	v.canvas.Path(rectPath(geom.NewExtent([2]float64{0, 0}, [2]float64{width, height})), strokeViewport...)
	if warning != "" {
		v.banner(width, height, warning)
	}
	v.canvas.End()
}

func (v *TileView) tile(d tiles.Descriptor) {
	style := strokeStale
	if d.Current {
		style = strokeCurrent
	}
	v.canvas.Group()
	v.canvas.Path(rectPath(d.Extent()), style...)
	v.canvas.Text(int(d.Left+4), int(d.Top+12), d.Key, labelStyle)
	v.canvas.Gend()
}

func (v *TileView) banner(width, height float64, text string) {
	lines := strings.Split(wordwrap.String(text, bannerWidth), "\n")
	v.canvas.Group()
	v.canvas.Rect(0, 0, int(width), int(height), bannerStyle)
	top := int(height)/2 - (len(lines)-1)*lineHeight/2
	for i, line := range lines {
		v.canvas.Text(int(width)/2, top+i*lineHeight, line, bannerText)
	}
	v.canvas.Gend()
}

// Recorder is a renderer keeping the latest render pass
type Recorder struct {
	mu     sync.Mutex
	tiles  []tiles.Descriptor
	passes int
}

func (r *Recorder) Render(ds []tiles.Descriptor, loaded func(key string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiles = append(r.tiles[:0:0], ds...)
	r.passes++
}

// Latest returns the descriptors of the last pass and the number of passes so far
func (r *Recorder) Latest() ([]tiles.Descriptor, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tiles.Descriptor(nil), r.tiles...), r.passes
}
