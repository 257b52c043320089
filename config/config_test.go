package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.SampleRate != DefaultSampleRate || cfg.Scheduler.MaxPendingBars != DefaultMaxPendingBars {
		t.Fatalf("defaults = %+v", cfg)
	}
	if len(cfg.AutoConnectControllers()) != 1 {
		t.Fatalf("default controllers = %+v", cfg.Controllers)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := DefaultConfig()
	cfg.UI.LastTempo = 128
	cfg.Scheduler.MaxPendingBars = 4
	cfg.AddController(ControllerConfig{PortName: "Keys", Type: ControllerKeyboard, AutoConnect: true, BaseNote: 48})
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path, _ := ConfigPath()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.UI.LastTempo != 128 || got.Scheduler.MaxPendingBars != 4 {
		t.Fatalf("loaded = %+v", got)
	}
	if ports := got.KeyboardPorts(); len(ports) != 1 || ports[0] != "Keys" {
		t.Fatalf("keyboard ports = %v", ports)
	}
	if got.KeyboardBaseNote("Keys") != 48 {
		t.Fatalf("base note = %d", got.KeyboardBaseNote("Keys"))
	}
}

func TestLoadFromNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
controllers:
  - port: Keys
    type: keyboard
    autoConnect: true
audio:
  sample_rate: 0
  default_gain: -2
scheduler:
  max_pending_bars: -1
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Audio.SampleRate != DefaultSampleRate || cfg.Audio.DefaultGain != 0 || cfg.Scheduler.MaxPendingBars != 0 {
		t.Fatalf("not normalized: %+v", cfg)
	}
	if len(cfg.Controllers) != 1 || cfg.Controllers[0].BaseNote != DefaultKeyboardNote {
		t.Fatalf("controllers = %+v", cfg.Controllers)
	}
}

func TestLoadFromRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("audio: [1, 2"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestAddControllerReplaces(t *testing.T) {
	cfg := &Config{}
	cfg.AddController(ControllerConfig{PortName: "A", AutoConnect: false})
	cfg.AddController(ControllerConfig{PortName: "A", AutoConnect: true})
	if len(cfg.Controllers) != 1 || !cfg.FindController("A").AutoConnect {
		t.Fatalf("controllers = %+v", cfg.Controllers)
	}
	if cfg.FindController("B") != nil {
		t.Fatalf("found unknown controller")
	}
}
