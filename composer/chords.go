package composer

import "math/rand/v2"

var majorScale = [7]int{0, 2, 4, 5, 7, 9, 11}

// Chord is a diatonic seventh-plus-extensions chord built on a scale degree
type Chord struct {
	Degree    int    // 1-7
	Intervals [7]int // semitones above the chord root
	Next      []int  // indexes into Chords of allowed successors
}

// SemitoneDist is the chord root's distance from the tonic
func (c Chord) SemitoneDist() int {
	return majorScale[c.Degree-1]
}

// Voicing returns the chord root (0) followed by a shuffled selection of
// intervals[1:size], each raised by octaves until the list ascends.
func (c Chord) Voicing(size int, rng *rand.Rand) []int {
	if size < 3 {
		return append([]int(nil), c.Intervals[:3]...)
	}
	if size > len(c.Intervals) {
		size = len(c.Intervals)
	}

	upper := append([]int(nil), c.Intervals[1:size]...)
	rng.Shuffle(len(upper), func(i, j int) { upper[i], upper[j] = upper[j], upper[i] })
	for i := 1; i < len(upper); i++ {
		for upper[i] < upper[i-1] {
			upper[i] += 12
		}
	}

	return append([]int{0}, upper...)
}

func degrees(d ...int) []int {
	idx := make([]int, len(d))
	for i, v := range d {
		idx[i] = v - 1
	}
	return idx
}

// Chords is the diatonic chord table, indexed by degree-1
var Chords = [7]Chord{
	{1, [7]int{0, 4, 7, 11, 14, 17, 21}, degrees(2, 3, 4, 5, 6, 7)},
	{2, [7]int{0, 3, 7, 10, 14, 17, 21}, degrees(3, 5, 7)},
	{3, [7]int{0, 3, 7, 10, 13, 17, 20}, degrees(4, 6)},
	{4, [7]int{0, 4, 7, 11, 14, 18, 21}, degrees(2, 5)},
	{5, [7]int{0, 4, 7, 10, 14, 17, 21}, degrees(1, 3, 6)},
	{6, [7]int{0, 3, 7, 10, 14, 17, 20}, degrees(2, 4)},
	{7, [7]int{0, 3, 6, 10, 13, 17, 20}, degrees(1, 3)},
}

// Progression walks the successor graph from a random chord and returns
// length chord indexes. Lengths below 2 return nil.
func Progression(length int, rng *rand.Rand) []int {
	if length < 2 {
		return nil
	}

	prog := make([]int, length)
	cur := rng.IntN(len(Chords))
	for i := range prog {
		prog[i] = cur
		next := Chords[cur].Next
		cur = next[rng.IntN(len(next))]
	}
	return prog
}
