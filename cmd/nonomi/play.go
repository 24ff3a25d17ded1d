package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"

	"nonomi/config"
	"nonomi/debug"
	"nonomi/midi"
	"nonomi/output"
	"nonomi/sensor"
	"nonomi/sequencer"
	"nonomi/theme"
	"nonomi/tui"
)

// driftStep is the largest change per read of the simulated sensor
const driftStep = 0.05

func runPlay(cmd *cobra.Command, args []string) error {
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

	th, err := loadTheme()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	device, err := openDevice(cfg)
	if err != nil {
		return err
	}

	var ports midi.Ports
	if cfg.MIDIOut != "" || cfg.Sensor.Kind == config.SensorMIDI {
		ports, err = midi.Scan(midi.PortTimeout)
		if err != nil {
			return err
		}
		defer gomidi.CloseDriver()
	}

	var sink sequencer.TriggerSink
	mirrorDone := make(chan struct{})
	if cfg.MIDIOut != "" {
		out, err := ports.FindOut(cfg.MIDIOut)
		if err != nil {
			return err
		}
		mirror, err := midi.OpenMirror(out, uint8(cfg.MIDIChannel-1))
		if err != nil {
			return err
		}
		sink = mirror
		go func() {
			mirror.Run(ctx)
			close(mirrorDone)
		}()
	} else {
		close(mirrorDone)
	}

	seed := seedOf(cfg)
	manager, err := newManager(cfg, seed, device, sink)
	if err != nil {
		return err
	}

	src, closeSrc, err := openSensor(cfg, ports, seed)
	if err != nil {
		return err
	}
	defer closeSrc()
	if src != nil {
		go sensor.Poll(ctx, src, sensorInterval(cfg), manager.UpdateSensor)
	}

	if err := manager.Start(); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(manager, th), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}

	stopErr := manager.Stop()
	stop()
	<-mirrorDone

	cfg.UI.LastTempo = manager.BPM()
	if configPath == "" {
		if err := cfg.Save(); err != nil {
			debug.Log("main", "save config: %v", err)
		}
	}

	return errors.Join(runErr, stopErr)
}

// openDevice picks the audio output, falling back to a silent clock
func openDevice(cfg *config.Config) (sequencer.Device, error) {
	if nullAudio {
		return output.NewNull(cfg.SampleRate, cfg.BlockSize), nil
	}
	dev, err := output.NewOto(cfg.SampleRate, cfg.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w (use --null to run without audio)", err)
	}
	return dev, nil
}

// openSensor returns nil when the sensor is disabled
func openSensor(cfg *config.Config, ports midi.Ports, seed uint64) (sensor.Source, func(), error) {
	noop := func() {}
	switch cfg.Sensor.Kind {
	case config.SensorDrift:
		return sensor.NewDrift(newRand(seed, 2), driftStep), noop, nil
	case config.SensorMIDI:
		if cfg.MIDIIn == "" {
			return nil, noop, errors.New("sensor kind midi needs --midi-in")
		}
		in, err := ports.FindIn(cfg.MIDIIn)
		if err != nil {
			return nil, noop, err
		}
		cc, err := midi.ListenCC(in)
		if err != nil {
			return nil, noop, err
		}
		return cc, func() { cc.Close() }, nil
	}
	return nil, noop, nil
}

func sensorInterval(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Sensor.IntervalMs) * time.Millisecond
}

func loadTheme() (*theme.Theme, error) {
	if palettePath == "" {
		return theme.New(theme.Default()), nil
	}
	palette, err := theme.LoadGPL(palettePath)
	if err != nil {
		return nil, err
	}
	return theme.New(palette), nil
}
