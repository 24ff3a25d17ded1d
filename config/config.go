package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"nonomi/composer"
	nerrors "nonomi/errors"
)

// SensorKind identifies where brightness/warmth readings come from
type SensorKind string

const (
	SensorNone  SensorKind = "none"
	SensorDrift SensorKind = "drift" // simulated slow random walk
	SensorMIDI  SensorKind = "midi"  // CC1 = brightness, CC2 = warmth
)

// SensorConfig defines the sensor collaborator
type SensorConfig struct {
	Kind       SensorKind `json:"kind"`
	IntervalMs int        `json:"intervalMs,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo float64 `json:"lastTempo,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	SampleRate        int          `json:"sampleRate"`
	BlockSize         int          `json:"blockSize"`
	BPM               float64      `json:"bpm"`
	Swing             float64      `json:"swing"`
	Key               string       `json:"key,omitempty"` // empty = random on each regenerate
	SampleDir         string       `json:"sampleDir"`
	DrumDir           string       `json:"drumDir,omitempty"`
	MIDIOut           string       `json:"midiOut,omitempty"`
	MIDIIn            string       `json:"midiIn,omitempty"`
	MIDIChannel       int          `json:"midiChannel,omitempty"` // 1-16, melodic parts
	Seed              uint64       `json:"seed,omitempty"` // 0 = time based
	ProgressionLength int          `json:"progressionLength"`
	VoicingSize       int          `json:"voicingSize"`
	Sensor            SensorConfig `json:"sensor"`
	UI                UIConfig     `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SampleRate:        44100,
		BlockSize:         512,
		BPM:               156,
		Swing:             1.0,
		SampleDir:         "assets/piano",
		DrumDir:           "assets/drums",
		ProgressionLength: 8,
		VoicingSize:       4,
		MIDIChannel:       1,
		Sensor: SensorConfig{
			Kind:       SensorDrift,
			IntervalMs: 500,
		},
		UI: UIConfig{
			LastTempo: 156,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nonomi"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Fields missing from the file keep their default values.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config from an explicit path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks every field and returns the first ConfigError found
func (c *Config) Validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return nerrors.NewConfigError("sampleRate", c.SampleRate, "must be between 8000 and 192000")
	case c.BlockSize < 16 || c.BlockSize > 8192:
		return nerrors.NewConfigError("blockSize", c.BlockSize, "must be between 16 and 8192")
	case !(c.BPM > 0 && c.BPM <= 999):
		return nerrors.NewConfigError("bpm", c.BPM, "must be in (0, 999]")
	case !(c.Swing >= 0 && c.Swing <= 1):
		return nerrors.NewConfigError("swing", c.Swing, "must be within [0, 1]")
	case c.ProgressionLength < 2:
		return nerrors.NewConfigError("progressionLength", c.ProgressionLength, "must be at least 2")
	case c.VoicingSize < 3 || c.VoicingSize > 7:
		return nerrors.NewConfigError("voicingSize", c.VoicingSize, "must be between 3 and 7")
	case c.MIDIChannel < 1 || c.MIDIChannel > 16:
		return nerrors.NewConfigError("midiChannel", c.MIDIChannel, "must be between 1 and 16")
	}

	if c.Key != "" {
		if _, err := composer.ParseNote(c.Key); err != nil {
			return nerrors.NewConfigError("key", c.Key, "unknown note name")
		}
	}

	switch c.Sensor.Kind {
	case SensorNone, SensorDrift, SensorMIDI:
	default:
		return nerrors.NewConfigError("sensor.kind", c.Sensor.Kind, "must be none, drift or midi")
	}
	if c.Sensor.Kind != SensorNone && c.Sensor.IntervalMs <= 0 {
		return nerrors.NewConfigError("sensor.intervalMs", c.Sensor.IntervalMs, "must be positive")
	}

	return nil
}
