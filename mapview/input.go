package mapview

import (
	"bitbucket.org/kleinnic74/mapview/animation"
	"bitbucket.org/kleinnic74/mapview/gesture"
	"go.uber.org/zap"
)

// HandlePointer processes a mouse event
func (c *Controller) HandlePointer(ev gesture.PointerEvent) {
	c.metrics.Gesture("pointer")
	c.apply(c.gestures.HandlePointer(ev))
}

// HandleTouch processes a touch event
func (c *Controller) HandleTouch(ev gesture.TouchEvent) {
	c.metrics.Gesture("touch")
	c.apply(c.gestures.HandleTouch(ev))
}

// HandleWheel processes a wheel event
func (c *Controller) HandleWheel(ev gesture.WheelEvent) {
	c.metrics.Gesture("wheel")
	c.apply(c.gestures.HandleWheel(ev))
}

func (c *Controller) apply(actions []gesture.Action) {
	for _, a := range actions {
		switch a := a.(type) {
		case gesture.StopAnimation:
			c.anim.StopAnimating()
		case gesture.SetView:
			c.anim.SetCenterZoomTarget(animation.Request{Center: a.Center, Zoom: a.Zoom})
		case gesture.Animate:
			if a.Inertial && !c.cfg.animate() {
				continue
			}
			c.SetCenterZoomTarget(Target{Center: a.Center, Zoom: a.Zoom, Pivot: a.Pivot, Duration: a.Duration})
		case gesture.Click:
			if c.handlers.Click != nil {
				c.handlers.Click(ClickEvent{Event: a.Event, Geo: a.Geo, Pixel: a.Pixel})
			}
		case gesture.Warning:
			c.showWarning(c.cfg.warningText(a.Kind))
		case gesture.ClearWarning:
			c.clearWarning()
		default:
			c.log.Warn("Unknown gesture action", zap.Any("action", a))
		}
	}
}

// showWarning displays text until no warning was triggered for WarningDelay
func (c *Controller) showWarning(text string) {
	if text == "" {
		return
	}
	if c.cancelWarning != nil {
		c.cancelWarning()
	}
	c.cancelWarning = c.host.AfterFunc(WarningDelay, c.clearWarning)
	if c.warning == text {
		return
	}
	c.warning = text
	if c.handlers.Warning != nil {
		c.handlers.Warning(text)
	}
}

func (c *Controller) clearWarning() {
	if c.cancelWarning != nil {
		c.cancelWarning()
		c.cancelWarning = nil
	}
	if c.warning == "" {
		return
	}
	c.warning = ""
	if c.handlers.Warning != nil {
		c.handlers.Warning("")
	}
}
