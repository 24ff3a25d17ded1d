package sequencer

import "math"

// StepsPerBar is the number of sixteenth steps in one bar
const StepsPerBar = 16

// EventKind identifies what a clock event triggers
type EventKind uint8

const (
	DrumStep EventKind = iota
	MelodyStep
	ChordChange
)

func (k EventKind) String() string {
	switch k {
	case DrumStep:
		return "drum"
	case MelodyStep:
		return "melody"
	case ChordChange:
		return "chord"
	}
	return "unknown"
}

// Event is a musical event at a frame offset within the current block
type Event struct {
	Kind   EventKind
	Offset int
}

// Clock converts elapsed audio frames into step events. It is not safe for
// concurrent use; Manager guards it with its lock.
//
// Swung steps (the "and" of each eighth) are delayed by up to two thirds of
// a step. An event whose delayed position falls past the end of the block
// being advanced is emitted by the next Advance call at its true position,
// so the event stream never depends on how the caller sizes its blocks.
type Clock struct {
	sampleRate int
	bpm        float64
	sps        int64 // samples per sixteenth, >= 1
	total      int64 // samples elapsed
	next       int64 // first step whose events have not fired
	swing      float64
}

// NewClock creates a clock at bpm with no swing
func NewClock(bpm float64, sampleRate int) *Clock {
	c := &Clock{sampleRate: sampleRate}
	c.setBPM(bpm)
	return c
}

func (c *Clock) setBPM(bpm float64) {
	sixteenth := 60.0 / bpm / 4
	c.sps = max(1, int64(math.RoundToEven(sixteenth*float64(c.sampleRate))))
	c.bpm = bpm
}

// SetBPM changes tempo and rescales the elapsed sample count so the
// position within the current step is kept. Steps are counted, not
// measured, so the step cursor is unchanged.
func (c *Clock) SetBPM(bpm float64) {
	old := c.sps
	c.setBPM(bpm)
	if old > 0 {
		phase := float64(c.total) / float64(old)
		c.total = int64(math.Round(phase * float64(c.sps)))
	}
}

// Reset rewinds to sample zero
func (c *Clock) Reset() {
	c.total = 0
	c.next = 0
}

// SetSwing sets the swing ratio, clamped to [0, 1]
func (c *Clock) SetSwing(ratio float64) {
	c.swing = math.Max(0, math.Min(1, ratio))
}

func (c *Clock) Swing() float64 { return c.swing }
func (c *Clock) BPM() float64 { return c.bpm }
func (c *Clock) SamplesPerSixteenth() int { return int(c.sps) }
func (c *Clock) SamplesPerBar() int { return int(c.sps) * StepsPerBar }
func (c *Clock) TotalSamples() int64 { return c.total }
func (c *Clock) SampleRate() int { return c.sampleRate }

// swingOffset is the delay applied to swung steps
func (c *Clock) swingOffset() int64 {
	if c.swing == 0 {
		return 0
	}
	return int64(math.RoundToEven(float64(c.sps) * 2 * c.swing / 3))
}

// Advance appends to dst the events falling in the next frames samples and
// moves the clock forward. Per step the order is drum, melody, chord change.
// Every step fires exactly once, even when swing or tempo change between
// calls; a step whose position has already passed fires at offset 0.
func (c *Clock) Advance(frames int, dst []Event) []Event {
	if frames <= 0 {
		return dst
	}

	sps := c.sps
	start := c.total
	end := start + int64(frames)
	swing := c.swingOffset()

	for ; ; c.next++ {
		boundary := c.next * sps
		stepInBar := c.next % StepsPerBar

		at := boundary
		if stepInBar%4 == 2 {
			at += swing
		}
		if at >= end {
			break
		}

		offset := int(max(0, at-start))
		dst = append(dst, Event{Kind: DrumStep, Offset: offset})
		if stepInBar%2 == 0 {
			dst = append(dst, Event{Kind: MelodyStep, Offset: offset})
		}
		if stepInBar == 0 {
			dst = append(dst, Event{Kind: ChordChange, Offset: int(max(0, boundary-start))})
		}
	}

	c.total = end
	return dst
}
