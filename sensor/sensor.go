package sensor

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"nonomi/debug"
)

// Source supplies brightness and warmth readings in [0, 1]
type Source interface {
	Read() (brightness, warmth float64, err error)
}

// Drift is a simulated sensor: both values take a bounded random walk,
// like a room's light changing slowly over the day.
type Drift struct {
	mu         sync.Mutex
	rng        *rand.Rand
	step       float64
	brightness float64
	warmth     float64
}

// NewDrift starts both values at 0.5. step is the largest change per read.
func NewDrift(rng *rand.Rand, step float64) *Drift {
	return &Drift{rng: rng, step: step, brightness: 0.5, warmth: 0.5}
}

// Read advances the walk and returns the new values
func (d *Drift) Read() (float64, float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.brightness = walk(d.brightness, d.step, d.rng)
	d.warmth = walk(d.warmth, d.step, d.rng)
	return d.brightness, d.warmth, nil
}

func walk(v, step float64, rng *rand.Rand) float64 {
	v += (rng.Float64()*2 - 1) * step
	return max(0, min(1, v))
}

// Poll reads src every interval and hands the values to apply until ctx is
// done. Read and apply errors are logged; polling carries on.
func Poll(ctx context.Context, src Source, interval time.Duration, apply func(brightness, warmth float64) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b, w, err := src.Read()
			if err != nil {
				debug.LogEvery(20, "sensor", "read: %v", err)
				continue
			}
			if err := apply(b, w); err != nil {
				debug.LogEvery(20, "sensor", "apply: %v", err)
			}
		}
	}
}
