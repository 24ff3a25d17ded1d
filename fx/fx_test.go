package fx

import (
	"math"
	"testing"
)

func TestMasterOutputBounded(t *testing.T) {
	m := NewMaster(44100)
	buf := make([][2]float32, 1024)
	for i := range buf {
		v := float32(8 * math.Sin(float64(i)*0.05))
		buf[i] = [2]float32{v, -v}
	}

	m.Process(buf)
	for i, f := range buf {
		if math.Abs(float64(f[0])) > masterVolume || math.Abs(float64(f[1])) > masterVolume {
			t.Fatalf("frame %d = %v exceeds master volume", i, f)
		}
	}
}

func TestMasterSilenceStaysSilent(t *testing.T) {
	m := NewMaster(44100)
	buf := make([][2]float32, 256)
	m.Process(buf)
	for i, f := range buf {
		if f != [2]float32{} {
			t.Fatalf("frame %d = %v, want silence", i, f)
		}
	}
}

func TestUpdateFilterSmoothsTowardTarget(t *testing.T) {
	m := NewMaster(44100)
	if m.Cutoff() != initialCutoff {
		t.Fatalf("initial cutoff = %v", m.Cutoff())
	}

	m.UpdateFilter(1)
	want := initialCutoff + (MaxCutoff-initialCutoff)*cutoffSmooth
	if math.Abs(m.Cutoff()-want) > 1e-9 {
		t.Errorf("cutoff after one update = %v, want %v", m.Cutoff(), want)
	}

	for i := 0; i < 500; i++ {
		m.UpdateFilter(0)
	}
	if math.Abs(m.Cutoff()-MinCutoff) > 1 {
		t.Errorf("cutoff should converge to %v, got %v", MinCutoff, m.Cutoff())
	}

	// out of range input is clamped to the filter range
	for i := 0; i < 500; i++ {
		m.UpdateFilter(5)
	}
	if m.Cutoff() > MaxCutoff {
		t.Errorf("cutoff %v exceeds max", m.Cutoff())
	}
}

func TestWiden(t *testing.T) {
	frames := [][2]float32{{1, 0}, {0.5, 0.5}}
	Widen(frames, 0.5)

	// pure mid is unchanged
	if frames[1] != [2]float32{0.5, 0.5} {
		t.Errorf("mono frame changed: %v", frames[1])
	}
	// mid 0.5, side 0.5*1.5
	if frames[0] != [2]float32{1.25, -0.25} {
		t.Errorf("widened frame = %v, want [1.25 -0.25]", frames[0])
	}
}

func TestPianoLowPassAttenuatesNyquist(t *testing.T) {
	p := NewPiano(44100)
	frames := make([][2]float32, 512)
	for i := range frames {
		v := float32(1)
		if i%2 == 1 {
			v = -1
		}
		frames[i] = [2]float32{v, v}
	}
	out := p.Process(frames)

	var peak float64
	for _, f := range out[256:] {
		peak = math.Max(peak, math.Abs(float64(f[0])))
	}
	if peak > 0.2 {
		t.Errorf("nyquist tone peak %v after 1 kHz low-pass", peak)
	}
}
