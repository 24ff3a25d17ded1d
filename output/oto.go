//go:build !headless

package output

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"nonomi/debug"
	nerrors "nonomi/errors"
	"nonomi/sequencer"
)

// Oto plays the engine through the system audio device. oto pulls bytes
// from Read on its own goroutine; each pull becomes one render call.
type Oto struct {
	ctx        *oto.Context
	player     *oto.Player
	sampleRate int

	mu      sync.Mutex // setup/control
	started bool

	renderMu sync.Mutex // held for the whole of each render call
	render   sequencer.RenderFunc
	frames   [][2]float32
}

// NewOto opens the audio context. oto allows one context per process.
func NewOto(sampleRate, blockSize int) (*Oto, error) {
	buffer := 2 * time.Duration(blockSize) * time.Second / time.Duration(sampleRate)
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, nerrors.NewStreamError("open", err)
	}
	<-ready

	debug.Log("output", "oto context %d Hz, buffer %v", sampleRate, buffer)
	return &Oto{
		ctx:        ctx,
		sampleRate: sampleRate,
		frames:     make([][2]float32, blockSize),
	}, nil
}

// Start begins pulling audio from render
func (o *Oto) Start(render sequencer.RenderFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return nil
	}
	if render == nil {
		return nerrors.NewStreamError("start", errors.New("nil render function"))
	}

	o.renderMu.Lock()
	o.render = render
	o.renderMu.Unlock()

	o.player = o.ctx.NewPlayer(o)
	o.player.Play()
	o.started = true
	return nil
}

// Stop detaches the render function and closes the player. Once it
// returns, render is never called again.
func (o *Oto) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		return nil
	}

	// waits out an in-flight Read
	o.renderMu.Lock()
	o.render = nil
	o.renderMu.Unlock()

	err := o.player.Err()
	o.player.Close()
	o.player = nil
	o.started = false

	if err != nil {
		return nerrors.NewStreamError("write", err)
	}
	return nil
}

// Read implements io.Reader for the oto player
func (o *Oto) Read(p []byte) (int, error) {
	o.renderMu.Lock()
	defer o.renderMu.Unlock()

	if o.render == nil {
		clear(p)
		return len(p), nil
	}

	n := len(p) / 8
	if cap(o.frames) < n {
		o.frames = make([][2]float32, n)
	}
	frames := o.frames[:n]
	o.render(frames)

	for i, f := range frames {
		binary.LittleEndian.PutUint32(p[i*8:], math.Float32bits(f[0]))
		binary.LittleEndian.PutUint32(p[i*8+4:], math.Float32bits(f[1]))
	}
	clear(p[n*8:])
	return len(p), nil
}

// IsStarted reports whether the player is running
func (o *Oto) IsStarted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started
}
