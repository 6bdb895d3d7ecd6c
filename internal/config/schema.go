package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version int          `yaml:"version" toml:"version"`
	Server  ServerConfig `yaml:"server" toml:"server"`
	Host    HostConfig   `yaml:"host" toml:"host"`
	View    ViewConfig   `yaml:"view" toml:"view"`
	Timing  TimingConfig `yaml:"timing" toml:"timing"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string   `yaml:"addr" toml:"addr"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// HostConfig selects the host application. A bridge URL wins over a file.
type HostConfig struct {
	// BridgeURL is the websocket address of a remote host
	BridgeURL string `yaml:"bridge_url,omitempty" toml:"bridge_url,omitempty"`
	// File is a snapshot or flowchart document served by the file host
	File string `yaml:"file,omitempty" toml:"file,omitempty"`
	// Watch reloads the diagram when File changes
	Watch bool `yaml:"watch" toml:"watch"`
}

// ViewConfig holds the initial view state and keyboard steps
type ViewConfig struct {
	Width          float64 `yaml:"width" toml:"width"`
	Height         float64 `yaml:"height" toml:"height"`
	OriginX        float64 `yaml:"origin_x" toml:"origin_x"`
	OriginY        float64 `yaml:"origin_y" toml:"origin_y"`
	PanStep        float64 `yaml:"pan_step" toml:"pan_step"`
	ZoomStep       float64 `yaml:"zoom_step" toml:"zoom_step"`
	ShowEventNames bool    `yaml:"show_event_names" toml:"show_event_names"`
	ShowParams     bool    `yaml:"show_params" toml:"show_params"`
}

// TimingConfig holds the controller delays
type TimingConfig struct {
	MenuActionDelay   Duration `yaml:"menu_action_delay" toml:"menu_action_delay"`
	RenderSettleDelay Duration `yaml:"render_settle_delay" toml:"render_settle_delay"`
	DragThreshold     Duration `yaml:"drag_threshold" toml:"drag_threshold"`
	ScrollDuration    Duration `yaml:"scroll_duration" toml:"scroll_duration"`
	NavigateDuration  Duration `yaml:"navigate_duration" toml:"navigate_duration"`
	WatchDebounce     Duration `yaml:"watch_debounce" toml:"watch_debounce"`
}

// Duration wraps time.Duration so config files can spell it "60ms"
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML decoder
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
