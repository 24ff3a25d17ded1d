package composer

import (
	"fmt"
	"strconv"
)

// Pitch class names as used by the sample files ("Csharp3v1.wav")
var noteNames = [12]string{
	"C", "Csharp", "D", "Dsharp", "E", "F",
	"Fsharp", "G", "Gsharp", "A", "Asharp", "B",
}

// Keys lists every valid key name
func Keys() []string {
	keys := make([]string, len(noteNames))
	copy(keys, noteNames[:])
	return keys
}

// ParseNote returns the pitch class (0-11) of a bare note name like "Fsharp"
func ParseNote(name string) (int, error) {
	for i, n := range noteNames {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown note: %q", name)
}

// NoteName returns the pitch class name for any semitone value
func NoteName(semitone int) string {
	return noteNames[((semitone%12)+12)%12]
}

// FullName builds a sample key such as "Dsharp4" from an absolute semitone
// (octave * 12 + pitch class)
func FullName(semitone int) string {
	return NoteName(semitone) + strconv.Itoa(semitone/12)
}

// SplitNote parses a sample key like "Asharp2" into its pitch class and octave
func SplitNote(full string) (pitchClass, octave int, err error) {
	i := len(full)
	for i > 0 && full[i-1] >= '0' && full[i-1] <= '9' {
		i--
	}
	if i == len(full) || i == 0 {
		return 0, 0, fmt.Errorf("malformed note: %q", full)
	}

	pitchClass, err = ParseNote(full[:i])
	if err != nil {
		return 0, 0, err
	}
	octave, err = strconv.Atoi(full[i:])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed note: %q", full)
	}
	return pitchClass, octave, nil
}
