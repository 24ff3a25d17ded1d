package sequencer

import (
	"math/rand/v2"
	"reflect"
	"testing"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestDrumsWrapAfterCycle(t *testing.T) {
	d := NewDrums(seeded(1), DefaultKit())
	for range 3 {
		d.AdvanceStep(nil)
	}
	from := d.Step()
	for i := 0; i < Steps; i++ {
		d.AdvanceStep(nil)
	}
	if d.Step() != from {
		t.Errorf("step after %d advances = %d, want %d", Steps, d.Step(), from)
	}
}

func TestDrumsDeterministic(t *testing.T) {
	play := func() [][]Hit {
		d := NewDrums(seeded(42), DefaultKit())
		var out [][]Hit
		for i := 0; i < 4*Steps; i++ {
			if i%Steps == 0 {
				d.RandomizeMutes()
			}
			out = append(out, d.AdvanceStep(nil))
		}
		return out
	}
	if a, b := play(), play(); !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different patterns")
	}
}

func TestDrumsOnlyListedSteps(t *testing.T) {
	d := NewDrums(seeded(7), DefaultKit())
	kit := DefaultKit()
	probs := map[string][Steps]float64{}
	ranges := map[string][2]float32{}
	for _, inst := range kit {
		probs[inst.Name] = inst.Probs
		ranges[inst.Name] = [2]float32{inst.VelMin * DrumVolume, inst.VelMax * DrumVolume}
	}

	for i := 0; i < 50*Steps; i++ {
		step := d.Step()
		for _, h := range d.AdvanceStep(nil) {
			if probs[h.Instrument][step] == 0 {
				t.Fatalf("%s fired on step %d", h.Instrument, step)
			}
			r := ranges[h.Instrument]
			if h.Velocity < r[0]-1e-6 || h.Velocity > r[1]+1e-6 {
				t.Fatalf("%s velocity %v outside %v", h.Instrument, h.Velocity, r)
			}
		}
	}
}

func TestDrumsMutes(t *testing.T) {
	kit := DefaultKit()
	for i := range kit {
		kit[i].MuteProb = 1
	}
	d := NewDrums(seeded(3), kit)
	d.AdvanceStep(nil)
	d.RandomizeMutes()

	if d.Step() != 1 {
		t.Errorf("RandomizeMutes moved the step to %d", d.Step())
	}
	for i, m := range d.Mutes() {
		if !m {
			t.Errorf("instrument %d not muted", i)
		}
	}
	for i := 0; i < Steps; i++ {
		if hits := d.AdvanceStep(nil); len(hits) != 0 {
			t.Fatalf("muted kit fired %v", hits)
		}
	}
}

func TestDrumsDisabledStillCounts(t *testing.T) {
	kit := []Instrument{{Name: "kick", Probs: everyNth(1, 1), VelMin: 1, VelMax: 1}}
	d := NewDrums(seeded(5), kit)

	if hits := d.AdvanceStep(nil); len(hits) != 1 || hits[0].Velocity != DrumVolume {
		t.Fatalf("hits = %v", hits)
	}

	d.Toggle()
	if d.Enabled() {
		t.Fatal("drums still enabled after toggle")
	}
	if hits := d.AdvanceStep(nil); len(hits) != 0 {
		t.Errorf("disabled drums fired %v", hits)
	}
	if d.Step() != 2 {
		t.Errorf("step = %d, want 2", d.Step())
	}

	d.ResetStep()
	if d.Step() != 0 {
		t.Errorf("step after reset = %d", d.Step())
	}
}

func TestDrumsOwnTheirKit(t *testing.T) {
	kit := DefaultKit()
	a := NewDrums(seeded(1), kit)
	b := NewDrums(seeded(2), kit)

	a.instruments[0].Muted = true
	if kit[0].Muted {
		t.Error("muting one sequencer changed the shared kit")
	}
	if b.Mutes()[0] {
		t.Error("muting one sequencer muted another built from the same kit")
	}
}
