package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	nerrors "nonomi/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero bpm", func(c *Config) { c.BPM = 0 }, "bpm"},
		{"negative bpm", func(c *Config) { c.BPM = -120 }, "bpm"},
		{"swing above one", func(c *Config) { c.Swing = 1.5 }, "swing"},
		{"tiny block", func(c *Config) { c.BlockSize = 4 }, "blockSize"},
		{"bad key", func(c *Config) { c.Key = "H" }, "key"},
		{"short progression", func(c *Config) { c.ProgressionLength = 1 }, "progressionLength"},
		{"bad sensor", func(c *Config) { c.Sensor.Kind = "camera" }, "sensor.kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, nerrors.ErrConfig) {
				t.Fatalf("Validate() = %v, want ConfigError", err)
			}
			var ce *nerrors.ConfigError
			if errors.As(err, &ce) && ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.BPM = 98
	cfg.Key = "Fsharp"
	cfg.MIDIOut = "IAC Driver Bus 1"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.BPM != 98 || loaded.Key != "Fsharp" || loaded.MIDIOut != "IAC Driver Bus 1" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SampleRate != 44100 || cfg.BPM != 156 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"bpm": 90}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.BPM != 90 {
		t.Errorf("bpm = %v, want 90", cfg.BPM)
	}
	if cfg.BlockSize != 512 {
		t.Errorf("blockSize = %d, want default 512", cfg.BlockSize)
	}
}

func TestLoadFileInvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"bpm": -1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, nerrors.ErrConfig) {
		t.Errorf("LoadFile = %v, want ConfigError", err)
	}
}
