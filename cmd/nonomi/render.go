package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"nonomi/config"
	"nonomi/debug"
	"nonomi/output"
	"nonomi/sensor"
	"nonomi/sequencer"
)

func runRender(cmd *cobra.Command, args []string) error {
	if renderBars < 1 {
		return fmt.Errorf("--bars must be at least 1, got %d", renderBars)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if debugLog {
		if err := debug.Enable(debug.DefaultPath()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: debug log: %v\n", err)
		}
		defer debug.Disable()
	}
	// MIDI sources cannot be read offline
	if cfg.Sensor.Kind == config.SensorMIDI {
		cfg.Sensor.Kind = config.SensorDrift
	}

	seed := seedOf(cfg)
	manager, err := newManager(cfg, seed, nil, nil)
	if err != nil {
		return err
	}

	src, closeSrc, err := openSensor(cfg, midiPortsNone, seed)
	if err != nil {
		return err
	}
	defer closeSrc()

	var render sequencer.RenderFunc = manager.Render
	if src != nil {
		every := cfg.SampleRate * cfg.Sensor.IntervalMs / 1000
		render = sensorRender(manager.Render, src, every, manager.UpdateSensor)
	}

	f, err := os.Create(renderOut)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	frames := renderBars * manager.SamplesPerBar()
	if err := output.RenderWAV(ctx, w, render, frames, cfg.BlockSize, cfg.SampleRate); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("wrote %d bars (%.1fs) to %s, seed %d\n", renderBars, float64(frames)/float64(cfg.SampleRate), renderOut, seed)
	return nil
}

// sensorRender reads src every `every` rendered frames and applies the
// reading, so offline renders follow rendered time rather than the wall clock.
func sensorRender(render sequencer.RenderFunc, src sensor.Source, every int, apply func(brightness, warmth float64) error) sequencer.RenderFunc {
	since := 0
	return func(out [][2]float32) {
		render(out)
		since += len(out)
		if since < every {
			return
		}
		since = 0
		b, w, err := src.Read()
		if err == nil {
			err = apply(b, w)
		}
		if err != nil {
			debug.LogEvery(20, "sensor", "render: %v", err)
		}
	}
}
