// Package config provides configuration management for flowview.
//
// Config files are YAML or TOML, chosen by extension. Locations (priority order):
//  1. $FLOWVIEW_CONFIG
//  2. ./flowview.yaml, ./flowview.toml
//  3. ~/.config/flowview/config.yaml (or config.toml)
//  4. /etc/flowview/config.yaml
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"flowview/internal/domain"
	"flowview/internal/service"
	"flowview/internal/viewport"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path in the format its extension names
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	opts := service.DefaultOptions()
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Addr:            ":3000",
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Host: HostConfig{Watch: true},
		View: ViewConfig{
			Width:    opts.Width,
			Height:   opts.Height,
			OriginX:  opts.Origin.X,
			OriginY:  opts.Origin.Y,
			PanStep:  opts.PanStep,
			ZoomStep: opts.ZoomStep,
		},
		Timing: TimingConfig{
			MenuActionDelay:   Duration(opts.MenuActionDelay),
			RenderSettleDelay: Duration(opts.RenderSettleDelay),
			DragThreshold:     Duration(opts.DragThreshold),
			ScrollDuration:    Duration(opts.ScrollDuration),
			NavigateDuration:  Duration(opts.NavigateDuration),
			WatchDebounce:     Duration(500 * time.Millisecond),
		},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}

	if c.View.Width <= 0 || c.View.Height <= 0 {
		c.View.Width, c.View.Height = def.View.Width, def.View.Height
	}
	if c.View.OriginX == 0 && c.View.OriginY == 0 {
		c.View.OriginX, c.View.OriginY = def.View.OriginX, def.View.OriginY
	}
	if c.View.PanStep <= 0 {
		c.View.PanStep = def.View.PanStep
	}
	if c.View.ZoomStep <= 0 || c.View.ZoomStep >= 1 {
		c.View.ZoomStep = def.View.ZoomStep
	}

	defaultDuration(&c.Timing.MenuActionDelay, def.Timing.MenuActionDelay)
	defaultDuration(&c.Timing.RenderSettleDelay, def.Timing.RenderSettleDelay)
	defaultDuration(&c.Timing.DragThreshold, def.Timing.DragThreshold)
	defaultDuration(&c.Timing.ScrollDuration, def.Timing.ScrollDuration)
	defaultDuration(&c.Timing.NavigateDuration, def.Timing.NavigateDuration)
	defaultDuration(&c.Timing.WatchDebounce, def.Timing.WatchDebounce)
}

func defaultDuration(d *Duration, def Duration) {
	if *d <= 0 {
		*d = def
	}
}

// Options converts the config to controller options
func (c *Config) Options() service.Options {
	return service.Options{
		MenuActionDelay:   c.Timing.MenuActionDelay.Duration(),
		RenderSettleDelay: c.Timing.RenderSettleDelay.Duration(),
		DragThreshold:     c.Timing.DragThreshold.Duration(),
		ScrollDuration:    c.Timing.ScrollDuration.Duration(),
		NavigateDuration:  c.Timing.NavigateDuration.Duration(),
		PanStep:           c.View.PanStep,
		ZoomStep:          c.View.ZoomStep,
		Origin:            viewport.Point{X: c.View.OriginX, Y: c.View.OriginY},
		Width:             c.View.Width,
		Height:            c.View.Height,
	}
}

// Flags returns the initial view flags
func (c *Config) Flags() domain.ViewFlags {
	return domain.ViewFlags{
		ShowEventNames: c.View.ShowEventNames,
		ShowParams:     c.View.ShowParams,
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	host := "none"
	switch {
	case c.Host.BridgeURL != "":
		host = "bridge " + c.Host.BridgeURL
	case c.Host.File != "":
		host = "file " + c.Host.File
		if c.Host.Watch {
			host += " (watched)"
		}
	}
	return fmt.Sprintf("Listen: %s, Host: %s, View: %gx%g, Menu delay: %s, Settle delay: %s",
		c.Server.Addr, host, c.View.Width, c.View.Height,
		c.Timing.MenuActionDelay.Duration(), c.Timing.RenderSettleDelay.Duration())
}
