package mapview

import (
	"encoding/json"
	"fmt"
	"time"

	"bitbucket.org/kleinnic74/mapview/gesture"
	"bitbucket.org/kleinnic74/mapview/tiles"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Config holds the options recognized by a map viewport
type Config struct {
	MinZoom float64 `json:"minZoom" mapstructure:"minZoom" default:"1" validate:"gte=0,ltefield=MaxZoom"`
	MaxZoom float64 `json:"maxZoom" mapstructure:"maxZoom" default:"18" validate:"lte=30"`
	// Animate is the master switch for animated transitions
	Animate           *bool         `json:"animate,omitempty" mapstructure:"animate" default:"true"`
	AnimationDuration time.Duration `json:"animationDuration" mapstructure:"animationDuration" default:"300ms" validate:"gte=0"`
	// ZoomSnap rounds wheel and pinch zooms to integer levels. Unset, it is
	// enabled unless the device is touch primary.
	ZoomSnap     *bool `json:"zoomSnap,omitempty" mapstructure:"zoomSnap"`
	TouchPrimary bool  `json:"touchPrimary" mapstructure:"touchPrimary"`

	MetaWheelZoom        bool   `json:"metaWheelZoom" mapstructure:"metaWheelZoom"`
	MetaWheelZoomWarning string `json:"metaWheelZoomWarning" mapstructure:"metaWheelZoomWarning" default:"Use META + wheel to zoom!"`
	TwoFingerDrag        bool   `json:"twoFingerDrag" mapstructure:"twoFingerDrag"`
	TwoFingerDragWarning string `json:"twoFingerDragWarning" mapstructure:"twoFingerDragWarning" default:"Use two fingers to move the map"`

	// DPRs lists the device pixel ratios tile variants are requested for
	DPRs       []float64 `json:"dprs,omitempty" mapstructure:"dprs" validate:"dive,gt=0"`
	TileURL    string    `json:"tileURL" mapstructure:"tileURL" default:"https://tile.openstreetmap.org/{z}/{x}/{y}.png" validate:"required"`
	Subdomains []string  `json:"subdomains,omitempty" mapstructure:"subdomains"`
}

// DefaultConfig returns a config with all defaults applied
func DefaultConfig() Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("invalid config defaults: %s", err))
	}
	return c
}

// Complete fills unset fields with their defaults and validates the result
func (c *Config) Complete() error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid map config: %w", err)
	}
	return nil
}

func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Config(p)
	return c.Complete()
}

func (c Config) animate() bool {
	return c.Animate == nil || *c.Animate
}

func (c Config) zoomSnap() bool {
	if c.ZoomSnap != nil {
		return *c.ZoomSnap
	}
	return !c.TouchPrimary
}

func (c Config) warningText(kind gesture.WarningKind) string {
	switch kind {
	case gesture.WarningWheel:
		return c.MetaWheelZoomWarning
	case gesture.WarningFingers:
		return c.TwoFingerDragWarning
	}
	return ""
}

func (c Config) gestureOptions(clickEnabled bool) gesture.Options {
	return gesture.Options{
		MinZoom:       c.MinZoom,
		MaxZoom:       c.MaxZoom,
		ZoomSnap:      c.zoomSnap(),
		MetaWheelZoom: c.MetaWheelZoom,
		TwoFingerDrag: c.TwoFingerDrag,
		ClickEnabled:  clickEnabled,
	}
}

func (c Config) urlProvider() tiles.URLProvider {
	return tiles.TemplateURL(c.TileURL, c.Subdomains...)
}
