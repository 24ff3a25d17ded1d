package midi

import (
	"fmt"

	"nonomi/composer"
)

// General MIDI drum notes for the engine's kit, played on channel 10
var DrumNotes = map[string]uint8{
	"kick":  36,
	"snare": 38,
	"hihat": 42,
}

// DrumChannel is GM channel 10, zero based
const DrumChannel uint8 = 9

// NoteNumber converts a sample name such as "Csharp4" to a MIDI note.
// Octave 4 starts at middle C (60).
func NoteNumber(name string) (uint8, error) {
	pc, oct, err := composer.SplitNote(name)
	if err != nil {
		return 0, err
	}
	n := (oct+1)*12 + pc
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("note %s out of MIDI range", name)
	}
	return uint8(n), nil
}

// Velocity maps a 0-1 gain to a MIDI velocity in 1-127
func Velocity(v float32) uint8 {
	n := int(v*127 + 0.5)
	return uint8(max(1, min(127, n)))
}
