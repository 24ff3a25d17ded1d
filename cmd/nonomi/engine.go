package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nonomi/composer"
	"nonomi/config"
	"nonomi/debug"
	"nonomi/fx"
	"nonomi/sampler"
	"nonomi/sequencer"
)

// loadConfig reads the config file and applies any flags that were set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("bpm") {
		cfg.BPM = flagBPM
	} else if cfg.UI.LastTempo > 0 {
		cfg.BPM = cfg.UI.LastTempo
	}
	if flags.Changed("swing") {
		cfg.Swing = flagSwing
	}
	if flags.Changed("key") {
		cfg.Key = flagKey
	}
	if flags.Changed("samples") {
		cfg.SampleDir = flagSamples
	}
	if flags.Changed("drums") {
		cfg.DrumDir = flagDrums
	}
	if flags.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if flags.Changed("block") {
		cfg.BlockSize = flagBlock
	}
	if flags.Changed("sensor") {
		cfg.Sensor.Kind = config.SensorKind(flagSensor)
	}
	if flags.Changed("midi-out") {
		cfg.MIDIOut = flagMIDIOut
	}
	if flags.Changed("midi-in") {
		cfg.MIDIIn = flagMIDIIn
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRand returns an independent stream for each consumer of the seed
func newRand(seed uint64, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

func seedOf(cfg *config.Config) uint64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return uint64(time.Now().UnixNano())
}

// loadSamples fills a cache with the piano, pre-processed, and the drum kit
func loadSamples(cfg *config.Config) (*sampler.Cache, error) {
	cache := sampler.NewCache()

	notes, err := cache.LoadNotes(cfg.SampleDir)
	if err != nil {
		return nil, fmt.Errorf("load piano samples: %w", err)
	}
	if len(notes) == 0 {
		fmt.Fprintf(os.Stderr, "warning: no piano samples in %s\n", cfg.SampleDir)
	}
	cache.Transform(notes, fx.NewPiano(cfg.SampleRate).Process)

	drums := cache.LoadDrums(cfg.DrumDir)
	if len(drums) < len(sampler.DrumFiles) {
		fmt.Fprintf(os.Stderr, "warning: %d of %d drum samples found in %s\n", len(drums), len(sampler.DrumFiles), cfg.DrumDir)
	}

	for _, name := range cache.Names() {
		if s, _ := cache.Lookup(name); s != nil && s.SampleRate != cfg.SampleRate {
			debug.Log("sampler", "%s is %d Hz, engine runs at %d Hz", name, s.SampleRate, cfg.SampleRate)
		}
	}
	return cache, nil
}

// newManager wires composer, effects and samples into an engine
func newManager(cfg *config.Config, seed uint64, device sequencer.Device, sink sequencer.TriggerSink) (*sequencer.Manager, error) {
	cache, err := loadSamples(cfg)
	if err != nil {
		return nil, err
	}

	rng := newRand(seed, 1)
	harmony := composer.New(rng, cfg.ProgressionLength, cfg.VoicingSize)

	m, err := sequencer.NewManager(sequencer.Options{
		SampleRate: cfg.SampleRate,
		BlockSize:  cfg.BlockSize,
		BPM:        cfg.BPM,
		Swing:      cfg.Swing,
		Rand:       rng,
		Harmony:    harmony,
		Effects:    fx.NewMaster(cfg.SampleRate),
		Samples:    cache,
		Device:     device,
		Sink:       sink,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Key != "" {
		if err := m.SetKey(cfg.Key); err != nil {
			return nil, err
		}
		m.Regenerate()
	}

	debug.Log("main", "engine ready: %d samples, %.1f bpm, key %s, seed %d", cache.Len(), cfg.BPM, m.Status().Key, seed)
	return m, nil
}
