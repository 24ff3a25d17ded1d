package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nonomi/debug"
)

type fixedSource struct{ reads int }

func (s *fixedSource) Read() (float64, float64, error) {
	s.reads++
	return 0.5, 0.5, nil
}

func TestSensorRenderFollowsRenderedTime(t *testing.T) {
	src := &fixedSource{}
	rendered := 0
	var applied int
	render := sensorRender(func(out [][2]float32) { rendered += len(out) }, src, 1000, func(b, w float64) error {
		applied++
		return nil
	})

	block := make([][2]float32, 250)
	for range 10 {
		render(block)
	}
	if rendered != 2500 {
		t.Errorf("rendered %d frames, want 2500", rendered)
	}
	if src.reads != 2 || applied != 2 {
		t.Errorf("reads %d, applied %d, want 2 each", src.reads, applied)
	}
}

func TestSensorRenderLogsApplyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := debug.Enable(path); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	render := sensorRender(func([][2]float32) {}, &fixedSource{}, 1, func(b, w float64) error {
		return errors.New("brightness out of range")
	})
	block := make([][2]float32, 1)
	for range 40 {
		render(block)
	}
	debug.Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if got := strings.Count(string(data), "brightness out of range"); got != 2 {
		t.Errorf("logged %d sensor errors over 40 failures, want 2", got)
	}
}
