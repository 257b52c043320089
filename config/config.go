package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerLaunchpadX    ControllerType = "launchpad-x"
	ControllerLaunchpadMini ControllerType = "launchpad-mini"
	ControllerLaunchpadPro  ControllerType = "launchpad-pro"
	ControllerKeyboard      ControllerType = "keyboard"
)

// ControllerConfig defines a saved controller configuration
type ControllerConfig struct {
	PortName    string         `yaml:"port"`
	Type        ControllerType `yaml:"type"`
	AutoConnect bool           `yaml:"autoConnect"`
	// BaseNote is the keyboard note mapped to the first pad cell
	BaseNote int `yaml:"baseNote,omitempty"`
}

// AudioConfig configures the output device
type AudioConfig struct {
	SampleRate  int     `yaml:"sample_rate"`
	DefaultGain float64 `yaml:"default_gain"`
}

// SchedulerConfig tunes bar-quantized playback
type SchedulerConfig struct {
	// MaxPendingBars drops a scheduled clip still waiting for media after
	// this many bars; 0 waits forever
	MaxPendingBars int `yaml:"max_pending_bars"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo int    `yaml:"last_tempo,omitempty"`
	Palette   string `yaml:"palette,omitempty"` // GIMP .gpl file
}

// Config is the main configuration structure
type Config struct {
	Controllers []ControllerConfig `yaml:"controllers,omitempty"`
	Audio       AudioConfig        `yaml:"audio"`
	Scheduler   SchedulerConfig    `yaml:"scheduler"`
	UI          UIConfig           `yaml:"ui,omitempty"`
}

// Defaults
const (
	DefaultSampleRate     = 48000
	DefaultMaxPendingBars = 16
	DefaultKeyboardNote   = 36 // C2
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        ControllerLaunchpadX,
				AutoConnect: true,
			},
		},
		Audio: AudioConfig{
			SampleRate:  DefaultSampleRate,
			DefaultGain: 1,
		},
		Scheduler: SchedulerConfig{
			MaxPendingBars: DefaultMaxPendingBars,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-padlaunch"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path; a missing file yields defaults
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Controllers = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = DefaultSampleRate
	}
	if c.Audio.DefaultGain < 0 {
		c.Audio.DefaultGain = 0
	}
	if c.Scheduler.MaxPendingBars < 0 {
		c.Scheduler.MaxPendingBars = 0
	}
	for i := range c.Controllers {
		if c.Controllers[i].Type == ControllerKeyboard && c.Controllers[i].BaseNote == 0 {
			c.Controllers[i].BaseNote = DefaultKeyboardNote
		}
	}
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating the directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AutoConnectControllers returns controllers with autoConnect enabled
func (c *Config) AutoConnectControllers() []ControllerConfig {
	var result []ControllerConfig
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl)
		}
	}
	return result
}

// KeyboardPorts returns the auto-connect keyboard port names
func (c *Config) KeyboardPorts() []string {
	var ports []string
	for _, ctrl := range c.AutoConnectControllers() {
		if ctrl.Type == ControllerKeyboard {
			ports = append(ports, ctrl.PortName)
		}
	}
	return ports
}

// KeyboardBaseNote returns the base note configured for a keyboard port
func (c *Config) KeyboardBaseNote(portName string) int {
	if ctrl := c.FindController(portName); ctrl != nil && ctrl.BaseNote > 0 {
		return ctrl.BaseNote
	}
	return DefaultKeyboardNote
}
