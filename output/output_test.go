package output

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"nonomi/sampler"
)

func TestNullStopBlocksFurtherRenders(t *testing.T) {
	n := NewNull(44100, 64)

	var calls atomic.Int64
	err := n.Start(func(out [][2]float32) {
		if len(out) != 64 {
			t.Errorf("render asked for %d frames", len(out))
		}
		calls.Add(1)
	})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if calls.Load() < 2 {
		t.Fatal("null device never rendered")
	}

	if err := n.Stop(); err != nil {
		t.Fatal(err)
	}
	after := calls.Load()
	time.Sleep(10 * time.Millisecond)
	if calls.Load() != after {
		t.Error("render called after Stop")
	}

	// restartable
	if err := n.Start(func([][2]float32) {}); err != nil {
		t.Fatal(err)
	}
	if err := n.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestNullRejectsNilRender(t *testing.T) {
	if err := NewNull(44100, 64).Start(nil); err == nil {
		t.Error("expected error for nil render")
	}
}

func TestRenderWAV(t *testing.T) {
	var blocks []int
	render := func(out [][2]float32) {
		blocks = append(blocks, len(out))
		for i := range out {
			out[i] = [2]float32{0.5, -0.5}
		}
	}

	var buf bytes.Buffer
	if err := RenderWAV(context.Background(), &buf, render, 1000, 256, 22050); err != nil {
		t.Fatal(err)
	}
	if want := []int{256, 256, 256, 232}; len(blocks) != len(want) || blocks[3] != 232 {
		t.Errorf("block sizes = %v, want %v", blocks, want)
	}

	s, err := sampler.Decode("out", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1000 || s.SampleRate != 22050 {
		t.Errorf("decoded %d frames at %d Hz", s.Len(), s.SampleRate)
	}
}

func TestRenderWAVCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := RenderWAV(ctx, &buf, func([][2]float32) {}, 100, 10, 44100); err == nil {
		t.Error("expected context error")
	}
}
