// Package config loads the server configuration from an optional YAML file
// and MAPVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"bitbucket.org/kleinnic74/mapview/mapview"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "MAPVIEW"

// Config holds all server configuration
type Config struct {
	Server ServerConfig   `mapstructure:"server"`
	Map    mapview.Config `mapstructure:"map"`
	// Flags lists the feature flags to enable
	Flags []string `mapstructure:"flags"`
}

type ServerConfig struct {
	Port    uint   `mapstructure:"port" default:"8080" validate:"gt=0,lte=65535"`
	DataDir string `mapstructure:"datadir" default:"." validate:"required"`
	// FPS is the frame rate session loops animate at
	FPS int `mapstructure:"fps" default:"60" validate:"gt=0,lte=240"`
}

// Load reads the configuration. A missing file is only an error if file was
// given explicitly.
func Load(file string) (*Config, error) {
	v := viper.New()

	// Defaults, so that every key can be overridden from the environment
	mapDefaults := mapview.DefaultConfig()
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.datadir", ".")
	v.SetDefault("server.fps", 60)
	v.SetDefault("map.minZoom", mapDefaults.MinZoom)
	v.SetDefault("map.maxZoom", mapDefaults.MaxZoom)
	v.SetDefault("map.animate", *mapDefaults.Animate)
	v.SetDefault("map.animationDuration", mapDefaults.AnimationDuration)
	v.SetDefault("map.touchPrimary", false)
	v.SetDefault("map.metaWheelZoom", false)
	v.SetDefault("map.metaWheelZoomWarning", mapDefaults.MetaWheelZoomWarning)
	v.SetDefault("map.twoFingerDrag", false)
	v.SetDefault("map.twoFingerDragWarning", mapDefaults.TwoFingerDragWarning)
	v.SetDefault("map.tileURL", mapDefaults.TileURL)
	v.SetDefault("flags", []string{})

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("mapview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// MAPVIEW_SERVER_PORT → server.port
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fills defaults and checks the configuration
func (c *Config) Validate() error {
	if err := defaults.Set(&c.Server); err != nil {
		return err
	}
	if err := validator.New().Struct(c.Server); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	return c.Map.Complete()
}
