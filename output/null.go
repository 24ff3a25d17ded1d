package output

import (
	"errors"
	"sync"
	"time"

	nerrors "nonomi/errors"
	"nonomi/sequencer"
)

// Null renders in real time and discards the audio. Used for headless
// runs and machines without a sound card.
type Null struct {
	sampleRate int
	blockSize  int

	mu       sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// NewNull creates a device rendering blockSize frames per block period
func NewNull(sampleRate, blockSize int) *Null {
	return &Null{sampleRate: sampleRate, blockSize: blockSize}
}

// Start begins rendering on a ticker
func (n *Null) Start(render sequencer.RenderFunc) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopChan != nil {
		return nil
	}
	if render == nil {
		return nerrors.NewStreamError("start", errors.New("nil render function"))
	}

	n.stopChan = make(chan struct{})
	n.done = make(chan struct{})
	period := time.Duration(n.blockSize) * time.Second / time.Duration(n.sampleRate)
	go n.loop(render, period, n.stopChan, n.done)
	return nil
}

func (n *Null) loop(render sequencer.RenderFunc, period time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	buf := make([][2]float32, n.blockSize)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			render(buf)
		}
	}
}

// Stop ends the loop and waits for the last render to return
func (n *Null) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopChan == nil {
		return nil
	}
	close(n.stopChan)
	<-n.done
	n.stopChan = nil
	n.done = nil
	return nil
}
