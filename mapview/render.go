package mapview

import (
	"bitbucket.org/kleinnic74/mapview/tiles"
	"go.uber.org/zap"
)

// Tiles returns the descriptors of the current render pass: stale layers
// first, oldest first, and the current layer last so it paints on top.
// Nothing is returned while the viewport has no size.
func (c *Controller) Tiles() []tiles.Descriptor {
	if !c.state.HasSize() {
		return nil
	}
	vp := c.state.Viewport()
	var ds []tiles.Descriptor
	for _, l := range c.state.StaleLayers() {
		ds = append(ds, l.Descriptors(vp, false)...)
	}
	ds = append(ds, c.state.Grid().Descriptors(vp, true)...)
	for i := range ds {
		tiles.Resolve(&ds[i], c.urls, c.cfg.DPRs)
	}
	return ds
}

// Grid returns the tile grid of the current viewport
func (c *Controller) Grid() tiles.Grid {
	return c.state.Grid()
}

// PendingTiles returns the number of current tiles not reported loaded yet
func (c *Controller) PendingTiles() int {
	return c.state.Pending()
}

// StaleLayers returns the layers kept below the current one
func (c *Controller) StaleLayers() []tiles.Layer {
	return c.state.StaleLayers()
}

// TileLoaded records that the tile with the given key finished loading.
// Keys of superseded tile generations are ignored.
func (c *Controller) TileLoaded(key string) {
	tracked, cleared := c.state.MarkLoaded(key)
	c.metrics.TileLoaded(tracked)
	if cleared {
		c.log.Debug("All tiles loaded, dropping stale layers", zap.String("last", key))
		c.render()
	}
}

func (c *Controller) render() {
	if c.renderer == nil || !c.state.HasSize() {
		return
	}
	c.renderer.Render(c.Tiles(), c.TileLoaded)
	c.metrics.Rendered(len(c.state.StaleLayers()))
}
