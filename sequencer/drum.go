package sequencer

import (
	"math/rand/v2"
	"slices"
)

// Steps is the length of the percussion cycle (two bars of sixteenths)
const Steps = 32

// DrumVolume scales every hit velocity. Mirrors divide it back out.
const DrumVolume = 0.25

// Instrument is one drum sound with its trigger table
type Instrument struct {
	Name     string
	Probs    [Steps]float64 // 0 = never triggers
	VelMin   float32
	VelMax   float32
	MuteProb float64 // chance of being muted at each RandomizeMutes
	Muted    bool
}

// Hit is a drum trigger produced by AdvanceStep
type Hit struct {
	Instrument string
	Velocity   float32
}

func steps(probs map[int]float64) [Steps]float64 {
	var t [Steps]float64
	for s, p := range probs {
		t[s] = p
	}
	return t
}

func everyNth(n int, p float64) [Steps]float64 {
	var t [Steps]float64
	for s := 0; s < Steps; s += n {
		t[s] = p
	}
	return t
}

// DefaultKit returns the kick/snare/hihat instruments
func DefaultKit() []Instrument {
	return []Instrument{
		{
			Name:     "kick",
			Probs:    steps(map[int]float64{0: 0.9, 14: 0.9, 16: 0.9, 20: 0.1}),
			VelMin:   0.85,
			VelMax:   1.0,
			MuteProb: 0.15,
		},
		{
			Name:     "snare",
			Probs:    steps(map[int]float64{8: 0.8, 24: 0.8}),
			VelMin:   0.7,
			VelMax:   0.9,
			MuteProb: 0.20,
		},
		{
			Name:     "hihat",
			Probs:    everyNth(4, 0.8),
			VelMin:   0.3,
			VelMax:   0.8,
			MuteProb: 0.25,
		},
	}
}

// Drums is the probabilistic percussion step sequencer. Not safe for
// concurrent use; Manager guards it.
type Drums struct {
	rng         *rand.Rand
	instruments []Instrument
	step        int
	enabled     bool
}

// NewDrums creates a drum sequencer with the given kit
func NewDrums(rng *rand.Rand, kit []Instrument) *Drums {
	return &Drums{
		rng:         rng,
		instruments: slices.Clone(kit),
		enabled:     true,
	}
}

// AdvanceStep appends the hits that fire on the current step to dst and
// moves to the next step. The counter advances even when drums are off.
func (d *Drums) AdvanceStep(dst []Hit) []Hit {
	if d.enabled {
		for i := range d.instruments {
			inst := &d.instruments[i]
			if inst.Muted {
				continue
			}
			p := inst.Probs[d.step]
			if p > 0 && d.rng.Float64() < p {
				vel := inst.VelMin + d.rng.Float32()*(inst.VelMax-inst.VelMin)
				dst = append(dst, Hit{Instrument: inst.Name, Velocity: vel * DrumVolume})
			}
		}
	}

	d.step = (d.step + 1) % Steps
	return dst
}

// RandomizeMutes re-rolls every instrument's mute flag. Meant to be called
// once per phrase; it leaves the step counter alone.
func (d *Drums) RandomizeMutes() {
	for i := range d.instruments {
		d.instruments[i].Muted = d.rng.Float64() < d.instruments[i].MuteProb
	}
}

// Mutes returns the mute flag of each instrument in kit order
func (d *Drums) Mutes() []bool {
	m := make([]bool, len(d.instruments))
	for i, inst := range d.instruments {
		m[i] = inst.Muted
	}
	return m
}

func (d *Drums) ResetStep() { d.step = 0 }
func (d *Drums) Step() int { return d.step }
func (d *Drums) Enabled() bool { return d.enabled }
func (d *Drums) SetEnabled(on bool) { d.enabled = on }
func (d *Drums) Toggle() { d.enabled = !d.enabled }
func (d *Drums) Instruments() []Instrument { return d.instruments }
