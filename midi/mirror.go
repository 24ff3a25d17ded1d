package midi

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"nonomi/debug"
	"nonomi/sequencer"
)

// Note lengths for mirrored voices
const (
	noteLength = 400 * time.Millisecond
	hitLength  = 80 * time.Millisecond
)

// Mirror forwards engine triggers to a MIDI output so external synths can
// double the generated parts. Trigger never blocks; a full queue drops.
type Mirror struct {
	channel uint8
	queue   chan sequencer.Trigger

	mu     sync.Mutex // serialises sends and close
	send   func(gomidi.Message) error
	closed bool
	timers map[*time.Timer]struct{}
}

// NewMirror creates a mirror writing melodic notes on channel (zero based)
// and drums on DrumChannel through send.
func NewMirror(send func(gomidi.Message) error, channel uint8) *Mirror {
	return &Mirror{
		channel: channel & 0x0f,
		queue:   make(chan sequencer.Trigger, 256),
		send:    send,
		timers:  make(map[*time.Timer]struct{}),
	}
}

// OpenMirror opens out and returns a mirror sending to it
func OpenMirror(out drivers.Out, channel uint8) (*Mirror, error) {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", out.String(), err)
	}
	debug.Log("midi", "mirroring to %s ch %d", out.String(), channel+1)
	return NewMirror(send, channel), nil
}

// Trigger queues t for sending. Called from the audio goroutine.
func (m *Mirror) Trigger(t sequencer.Trigger) {
	select {
	case m.queue <- t:
	default:
		debug.LogEvery(50, "midi", "mirror queue full, dropped %s", t.Name)
	}
}

// Run schedules queued triggers until ctx is done, then silences every
// pending note (blocking - run in goroutine)
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.close()
			return
		case t := <-m.queue:
			m.schedule(t)
		}
	}
}

func (m *Mirror) schedule(t sequencer.Trigger) {
	ch, note, vel, length, err := m.translate(t)
	if err != nil {
		debug.Log("midi", "skip %s: %v", t.Name, err)
		return
	}

	m.after(t.Delay, func() { m.write(gomidi.NoteOn(ch, note, vel)) })
	m.after(t.Delay+length, func() { m.write(gomidi.NoteOff(ch, note)) })
}

func (m *Mirror) translate(t sequencer.Trigger) (ch, note, vel uint8, length time.Duration, err error) {
	if t.Kind == sequencer.DrumVoice {
		n, ok := DrumNotes[t.Name]
		if !ok {
			return 0, 0, 0, 0, fmt.Errorf("no drum note for %q", t.Name)
		}
		return DrumChannel, n, Velocity(t.Velocity / sequencer.DrumVolume), hitLength, nil
	}
	n, err := NoteNumber(t.Name)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return m.channel, n, Velocity(t.Velocity), noteLength, nil
}

func (m *Mirror) after(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		fn()
		m.mu.Lock()
		delete(m.timers, timer)
		m.mu.Unlock()
	})
	m.timers[timer] = struct{}{}
}

func (m *Mirror) write(msg gomidi.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if err := m.send(msg); err != nil {
		debug.LogEvery(50, "midi", "send %s: %v", msg, err)
	}
}

// close stops pending timers and sends all-notes-off on both channels
func (m *Mirror) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	for t := range m.timers {
		t.Stop()
	}
	m.timers = nil
	for _, ch := range []uint8{m.channel, DrumChannel} {
		_ = m.send(gomidi.ControlChange(ch, 123, 0))
	}
	m.closed = true
}
