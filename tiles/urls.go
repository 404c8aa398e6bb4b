package tiles

import (
	"fmt"
	"strconv"
	"strings"
)

const OpenStreetMap = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// URLProvider returns the image URL of a tile for a device pixel ratio
type URLProvider func(x, y, zoom int, dpr float64) string

// TemplateURL builds a provider from a template with {z}, {x}, {y} placeholders,
// {s} for a subdomain chosen per tile and {r} for a retina suffix ("@2x")
// used when dpr >= 2.
func TemplateURL(template string, subdomains ...string) URLProvider {
	return func(x, y, z int, dpr float64) string {
		var sub string
		if len(subdomains) > 0 {
			sub = subdomains[abs(x+y)%len(subdomains)]
		}
		var retina string
		if dpr >= 2 {
			retina = fmt.Sprintf("@%sx", strconv.FormatFloat(dpr, 'f', -1, 64))
		}
		return strings.NewReplacer(
			"{z}", strconv.Itoa(z),
			"{x}", strconv.Itoa(x),
			"{y}", strconv.Itoa(y),
			"{s}", sub,
			"{r}", retina,
		).Replace(template)
	}
}

// Resolve fills URL and SrcSet of d. The column is wrapped before the provider
// is called so tiles left or right of the world repeat it.
func Resolve(d *Descriptor, urls URLProvider, dprs []float64) {
	if urls == nil {
		return
	}
	t := d.Tile.Wrapped()
	d.URL = urls(t.X, t.Y, t.Zoom, 1)
	d.SrcSet = d.SrcSet[:0]
	for _, dpr := range dprs {
		d.SrcSet = append(d.SrcSet, Source{DPR: dpr, URL: urls(t.X, t.Y, t.Zoom, dpr)})
	}
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
