package fx

const (
	pianoCutoff = 1000.0
	pianoWiden  = 0.5
)

// Piano is the offline chain applied once to every melodic sample at load
// time: a gentle low-pass and mid/side widening.
type Piano struct {
	sampleRate int
}

// NewPiano creates the piano pre-processing chain
func NewPiano(sampleRate int) *Piano {
	return &Piano{sampleRate: sampleRate}
}

// Process filters and widens frames in place and returns them
func (p *Piano) Process(frames [][2]float32) [][2]float32 {
	var lpf onePole
	lpf.process(frames, lpf.coeff(pianoCutoff, p.sampleRate))
	Widen(frames, pianoWiden)
	return frames
}

// Widen scales the side signal by (1 + amount)
func Widen(frames [][2]float32, amount float32) {
	for i, f := range frames {
		mid := (f[0] + f[1]) * 0.5
		side := (f[0] - f[1]) * 0.5 * (1 + amount)
		frames[i] = [2]float32{mid + side, mid - side}
	}
}
