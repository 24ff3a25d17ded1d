package composer

import (
	"math/rand/v2"
)

// Melody scale: degrees of the major scale from a fifth below to a fifth
// above the octave, in semitones relative to the key.
var melodyScale = []int{-5, -3, -1, 0, 2, 4, 5, 7, 9, 11, 12, 14, 16, 17, 19}

// Step-size weights for the melody walker (index = scale steps)
var intervalWeights = [8]float64{0.10, 0.30, 0.20, 0.15, 0.15, 0.025, 0.025, 0.05}

const (
	minOctave = 1
	maxOctave = 6

	chordOctave  = 3
	bassOctave   = 2
	melodyOctave = 5
)

// Changes is what AdvanceChord asks the engine to apply
type Changes struct {
	Progress       int  // new position in the progression
	RandomizeDrums bool // re-roll percussion mutes

	MelodyChanged bool // MelodyDensity and MelodyOff carry new values
	MelodyDensity float64
	MelodyOff     bool
}

// Composer holds the harmonic progression state. It is not safe for
// concurrent use; the engine serialises access under its own lock.
type Composer struct {
	rng *rand.Rand

	length      int
	progression []int // indexes into Chords
	progress    int

	key      int
	fixedKey bool // SetKey pins the key across regenerations

	scale    []int
	scalePos int

	density     float64
	melodyOff   bool
	voicingSize int
}

// New creates a composer and generates its first progression
func New(rng *rand.Rand, length, voicingSize int) *Composer {
	if length < 2 {
		length = 2
	}
	c := &Composer{
		rng:         rng,
		length:      length,
		density:     0.33,
		voicingSize: clampInt(voicingSize, 3, 7),
	}
	c.GenerateProgression()
	return c
}

// GenerateProgression picks a new key (unless pinned) and chord progression,
// and resets progress and the melody walker.
func (c *Composer) GenerateProgression() {
	if !c.fixedKey {
		c.key = c.rng.IntN(len(noteNames))
	}
	c.progression = Progression(c.length, c.rng)
	c.progress = 0

	c.scale = melodyScale
	c.scalePos = c.rng.IntN(len(c.scale))
}

// Current returns the chord at the current progression position
func (c *Composer) Current() Chord {
	return Chords[c.progression[c.progress]]
}

// AdvanceChord moves to the next chord and reports parameter changes:
// drum mutes are re-rolled halfway through and at the top of the
// progression, where the melody density and on/off state also change.
func (c *Composer) AdvanceChord() Changes {
	next := c.progress + 1
	if next == len(c.progression) {
		next = 0
	}

	ch := Changes{Progress: next}
	switch c.progress {
	case 4:
		ch.RandomizeDrums = true
	case 0:
		ch.RandomizeDrums = true
		ch.MelodyChanged = true
		ch.MelodyDensity = 0.02 + c.rng.Float64()*0.03
		ch.MelodyOff = c.rng.Float64() < 0.25
	}

	c.progress = next
	return ch
}

// ChordNotes returns the sample names of a freshly shuffled voicing of the
// current chord in octave 3. Notes outside octaves 1-6 are skipped.
func (c *Composer) ChordNotes() []string {
	chord := c.Current()
	root := c.key + chordOctave*12 + chord.SemitoneDist()

	voicing := chord.Voicing(c.voicingSize, c.rng)
	notes := make([]string, 0, len(voicing))
	for _, interval := range voicing {
		total := root + interval
		if oct := total / 12; oct >= minOctave && oct <= maxOctave {
			notes = append(notes, FullName(total))
		}
	}
	return notes
}

// BassNote returns the current chord root in octave 2
func (c *Composer) BassNote() string {
	return FullName(c.key + bassOctave*12 + c.Current().SemitoneDist())
}

// MelodyNote takes one step of the melody walker. It returns false when the
// melody is off, the density roll fails, or the note falls out of range.
func (c *Composer) MelodyNote() (string, bool) {
	if c.melodyOff || len(c.scale) == 0 {
		return "", false
	}
	if c.rng.Float64() >= c.density {
		return "", false
	}

	down := min(c.scalePos, 7)
	up := min(len(c.scale)-1-c.scalePos, 7)

	var goingUp bool
	switch {
	case down >= 1 && up >= 1:
		goingUp = c.rng.Float64() > 0.5
	case up >= 1:
		goingUp = true
	case down >= 1:
		goingUp = false
	default:
		return "", false
	}

	maxSteps := down
	if goingUp {
		maxSteps = up
	}
	dist := c.weightedStep(maxSteps)
	if goingUp {
		c.scalePos += dist
	} else {
		c.scalePos -= dist
	}
	c.scalePos = clampInt(c.scalePos, 0, len(c.scale)-1)

	total := c.key + melodyOctave*12 + c.scale[c.scalePos]
	if oct := total / 12; oct < minOctave || oct > maxOctave {
		return "", false
	}
	return FullName(total), true
}

// weightedStep returns a step distance in [1, maxSteps] drawn from intervalWeights
func (c *Composer) weightedStep(maxSteps int) int {
	if maxSteps < 1 {
		return 1
	}
	weights := intervalWeights[1 : maxSteps+1]

	var total float64
	for _, w := range weights {
		total += w
	}

	roll := c.rng.Float64()
	var cumulative float64
	for i, w := range weights {
		cumulative += w / total
		if roll <= cumulative {
			return i + 1
		}
	}
	return 1
}

// SetKey pins the key. An empty name unpins it so the next regeneration
// picks a random key again.
func (c *Composer) SetKey(name string) error {
	if name == "" {
		c.fixedKey = false
		return nil
	}
	k, err := ParseNote(name)
	if err != nil {
		return err
	}
	c.key = k
	c.fixedKey = true
	return nil
}

// Key returns the current key name
func (c *Composer) Key() string {
	return NoteName(c.key)
}

// Position returns the progression index and the current chord's degree
func (c *Composer) Position() (index, degree int) {
	return c.progress, c.Current().Degree
}

// Degrees returns the scale degrees of the whole progression
func (c *Composer) Degrees() []int {
	d := make([]int, len(c.progression))
	for i, idx := range c.progression {
		d[i] = Chords[idx].Degree
	}
	return d
}

func (c *Composer) SetMelodyDensity(d float64) { c.density = d }
func (c *Composer) MelodyDensity() float64 { return c.density }
func (c *Composer) SetMelodyOff(off bool) { c.melodyOff = off }
func (c *Composer) MelodyOff() bool { return c.melodyOff }

// SetVoicingSize changes how many notes chords get (3-7)
func (c *Composer) SetVoicingSize(n int) {
	c.voicingSize = clampInt(n, 3, 7)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
