// Package config loads the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jeongseonghan/modviz/internal/export"
	"github.com/jeongseonghan/modviz/internal/logging"
	"github.com/jeongseonghan/modviz/internal/modem"
	"github.com/jeongseonghan/modviz/internal/scope"
	"github.com/jeongseonghan/modviz/internal/spectrum"
)

var ErrInvalid = errors.New("invalid configuration")

// View holds the initial plot and its geometry.
type View struct {
	Mode            scope.View `yaml:"mode"`
	PixelsPerSecond float64    `yaml:"pixels_per_second"`
	Width           int        `yaml:"width"`
	Height          int        `yaml:"height"`
}

// Server configures the HTTP and websocket front end.
type Server struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	FrameRate int    `yaml:"frame_rate"`
	NoiseSeed int64  `yaml:"noise_seed"`
}

// Export configures where waveforms are written.
type Export struct {
	Dir   string          `yaml:"dir"`
	Noise bool            `yaml:"noise"` // add Gaussian noise at the configured SNR
	Seed  int64           `yaml:"seed"`
	S3    export.S3Config `yaml:"s3"`
}

// Config is the whole file.
type Config struct {
	Modulation modem.Config    `yaml:"modulation"`
	Spectrum   spectrum.Config `yaml:"spectrum"`
	View       View            `yaml:"view"`
	Server     Server          `yaml:"server"`
	Log        logging.Config  `yaml:"log"`
	Export     Export          `yaml:"export"`

	// Presets are named modulation settings. Each is read on top of the
	// file's modulation section.
	Presets map[string]modem.Config `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	settings := scope.DefaultSettings()
	return &Config{
		Modulation: settings.Modulation,
		Spectrum:   settings.Spectrum,
		View: View{
			Mode:            settings.View,
			PixelsPerSecond: settings.PixelsPerSecond,
			Width:           settings.Screen.Width,
			Height:          settings.Screen.Height,
		},
		Server: Server{
			Addr:      "127.0.0.1:8080",
			StaticDir: "./web/static",
			FrameRate: 60,
			NoiseSeed: 1,
		},
		Log: logging.DefaultConfig(),
		Export: Export{
			Dir:  "./exports",
			Seed: 1,
		},
		Presets: defaultPresets(settings.Modulation),
	}
}

func defaultPresets(base modem.Config) map[string]modem.Config {
	preset := func(kind modem.Kind, bps int) modem.Config {
		c := base
		c.Kind = kind
		c.BitsPerSymbol = bps
		return c
	}
	return map[string]modem.Config{
		"ook":   preset(modem.ASK, 1),
		"4ask":  preset(modem.ASK, 2),
		"bfsk":  preset(modem.FSK, 1),
		"4fsk":  preset(modem.FSK, 2),
		"bpsk":  preset(modem.PSK, 1),
		"qpsk":  preset(modem.PSK, 2),
		"8psk":  preset(modem.PSK, 3),
		"16psk": preset(modem.PSK, 4),
	}
}

type file struct {
	Config  `yaml:",inline"`
	Presets map[string]yaml.Node `yaml:"presets"`
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.parse(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parse(data []byte) error {
	f := file{Config: *c}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = f.Config
	for name, node := range f.Presets {
		p := c.Modulation
		if err := node.Decode(&p); err != nil {
			return fmt.Errorf("preset %q: %w", name, err)
		}
		c.Presets[name] = p
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Settings().Validate(); err != nil {
		return err
	}
	if err := c.Spectrum.Validate(); err != nil {
		return err
	}
	if c.Server.FrameRate < 1 || c.Server.FrameRate > 240 {
		return fmt.Errorf("%w: frame rate %d not in [1,240]", ErrInvalid, c.Server.FrameRate)
	}
	if c.Export.Dir == "" {
		return fmt.Errorf("%w: export dir is empty", ErrInvalid)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for _, name := range c.PresetNames() {
		if err := c.Presets[name].Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return nil
}

// Settings returns the initial scope settings.
func (c *Config) Settings() scope.Settings {
	return scope.Settings{
		Modulation:      c.Modulation,
		Spectrum:        c.Spectrum,
		View:            c.View.Mode,
		PixelsPerSecond: c.View.PixelsPerSecond,
		Screen:          scope.Screen{Width: c.View.Width, Height: c.View.Height},
	}
}

// Preset returns the named modulation settings.
func (c *Config) Preset(name string) (modem.Config, error) {
	p, ok := c.Presets[name]
	if !ok {
		return modem.Config{}, fmt.Errorf("unknown preset %q", name)
	}
	return p, nil
}

// PresetNames lists presets in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
