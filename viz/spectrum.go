package viz

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Analyser settings
const (
	DefaultBands = 64
	FFTSize      = 2048
	MinFreq      = 20.0
	MaxFreq      = 16000.0
)

// Spectrum turns blocks of output audio into smoothed, peak-normalised
// magnitudes in log-spaced bands. Not safe for concurrent use.
type Spectrum struct {
	sampleRate int
	smoothing  float64

	edges      []float64 // band edges in Hz, len(bands)+1
	magnitudes []float64
	smoothed   []float64
	mono       []float64
}

// NewSpectrum creates an analyser with bands bands. smoothing in [0, 1] is
// the weight kept from the previous frame.
func NewSpectrum(sampleRate, bands int, smoothing float64) *Spectrum {
	bands = max(1, bands)
	s := &Spectrum{
		sampleRate: sampleRate,
		smoothing:  max(0, min(1, smoothing)),
		edges:      make([]float64, bands+1),
		magnitudes: make([]float64, bands),
		smoothed:   make([]float64, bands),
		mono:       make([]float64, FFTSize),
	}

	lo, hi := math.Log10(MinFreq), math.Log10(MaxFreq)
	for i := range s.edges {
		s.edges[i] = math.Pow(10, lo+(hi-lo)*float64(i)/float64(bands))
	}
	return s
}

// Update analyses the concatenated blocks and returns the smoothed bands.
// With no audio the previous values are returned unchanged.
func (s *Spectrum) Update(blocks [][][2]float32) []float64 {
	n := 0
	for _, b := range blocks {
		for _, f := range b {
			if n == FFTSize {
				break
			}
			s.mono[n] = float64(f[0]+f[1]) / 2
			n++
		}
	}
	if n == 0 {
		return s.smoothed
	}
	clear(s.mono[n:])

	spec := fft.FFTReal(s.mono)
	binHz := float64(s.sampleRate) / FFTSize

	for i := range s.magnitudes {
		var sum float64
		var count int
		for k := 0; k <= FFTSize/2; k++ {
			freq := float64(k) * binHz
			if freq >= s.edges[i] && freq < s.edges[i+1] {
				sum += cmplx.Abs(spec[k])
				count++
			}
		}
		// bands narrower than a bin keep their last value
		if count > 0 {
			s.magnitudes[i] = sum / float64(count)
		}
	}

	peak := 0.0
	for _, m := range s.magnitudes {
		peak = max(peak, m)
	}
	if peak > 0 {
		for i := range s.magnitudes {
			s.magnitudes[i] /= peak
		}
	}

	for i := range s.smoothed {
		s.smoothed[i] = s.smoothed[i]*s.smoothing + s.magnitudes[i]*(1-s.smoothing)
	}
	return s.smoothed
}

// Bands returns the current smoothed magnitudes
func (s *Spectrum) Bands() []float64 {
	return s.smoothed
}

// Edges returns the band edges in Hz
func (s *Spectrum) Edges() []float64 {
	return s.edges
}
