package fx

import (
	"math"
	"sync"
	"sync/atomic"
)

// Filter cutoff range driven by brightness
const (
	MinCutoff = 200.0
	MaxCutoff = 15000.0

	initialCutoff = 2000.0
	cutoffSmooth  = 0.05 // fraction of the distance to the target per update

	limiterThresholdDB = -0.5
	limiterRelease     = 0.05 // seconds
	saturationDrive    = 0.8
	masterVolume       = 0.5
)

// onePole is a first-order low-pass per stereo channel
type onePole struct {
	y [2]float32
}

func (p *onePole) coeff(cutoff float64, sampleRate int) float32 {
	return float32(1 - math.Exp(-2*math.Pi*cutoff/float64(sampleRate)))
}

func (p *onePole) process(buf [][2]float32, a float32) {
	for i := range buf {
		p.y[0] += a * (buf[i][0] - p.y[0])
		p.y[1] += a * (buf[i][1] - p.y[1])
		buf[i] = p.y
	}
}

// Master is the output chain: brightness-controlled low-pass, peak limiter
// and tanh saturation at master volume. Process runs on the audio goroutine;
// UpdateFilter may be called from any goroutine.
type Master struct {
	sampleRate int

	cutoff   atomic.Uint64 // float64 bits, read once per block
	updateMu sync.Mutex    // serialises UpdateFilter callers

	lpf       onePole
	threshold float32
	release   float32
	gain      float32
}

// NewMaster creates the master chain
func NewMaster(sampleRate int) *Master {
	m := &Master{
		sampleRate: sampleRate,
		threshold:  float32(math.Pow(10, limiterThresholdDB/20)),
		release:    float32(1 - math.Exp(-1/(limiterRelease*float64(sampleRate)))),
		gain:       1,
	}
	m.cutoff.Store(math.Float64bits(initialCutoff))
	return m
}

// Cutoff returns the current low-pass cutoff in Hz
func (m *Master) Cutoff() float64 {
	return math.Float64frombits(m.cutoff.Load())
}

// UpdateFilter moves the cutoff 5% of the way toward the frequency that
// brightness (0-1) maps to.
func (m *Master) UpdateFilter(brightness float64) {
	target := MinCutoff + brightness*(MaxCutoff-MinCutoff)
	target = math.Max(MinCutoff, math.Min(target, MaxCutoff))

	m.updateMu.Lock()
	cur := m.Cutoff()
	cur += (target - cur) * cutoffSmooth
	m.cutoff.Store(math.Float64bits(cur))
	m.updateMu.Unlock()
}

// Process filters, limits and saturates buf in place
func (m *Master) Process(buf [][2]float32) {
	m.lpf.process(buf, m.lpf.coeff(m.Cutoff(), m.sampleRate))

	for i := range buf {
		peak := max(abs32(buf[i][0]), abs32(buf[i][1]))
		target := float32(1)
		if peak > m.threshold {
			target = m.threshold / peak
		}
		if target < m.gain {
			m.gain = target
		} else {
			m.gain += (target - m.gain) * m.release
		}

		buf[i][0] = saturate(buf[i][0] * m.gain)
		buf[i][1] = saturate(buf[i][1] * m.gain)
	}
}

func saturate(x float32) float32 {
	return float32(math.Tanh(float64(x)*saturationDrive)) * masterVolume
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
