package midi

import (
	"context"
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"nonomi/sequencer"
)

func TestNoteNumber(t *testing.T) {
	tests := []struct {
		name string
		want uint8
	}{
		{"C4", 60},
		{"A4", 69},
		{"Csharp2", 37},
		{"B6", 95},
		{"C1", 24},
	}
	for _, tt := range tests {
		got, err := NoteNumber(tt.name)
		if err != nil {
			t.Errorf("NoteNumber(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NoteNumber(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}

	for _, bad := range []string{"", "H4", "C", "C99"} {
		if _, err := NoteNumber(bad); err == nil {
			t.Errorf("NoteNumber(%q) should fail", bad)
		}
	}
}

func TestVelocity(t *testing.T) {
	if Velocity(0) != 1 || Velocity(1) != 127 || Velocity(2) != 127 {
		t.Errorf("velocity bounds: %d %d %d", Velocity(0), Velocity(1), Velocity(2))
	}
	if v := Velocity(0.5); v != 64 {
		t.Errorf("Velocity(0.5) = %d", v)
	}
}

type recorder struct {
	mu   sync.Mutex
	msgs []gomidi.Message
}

func (r *recorder) send(msg gomidi.Message) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	return nil
}

func (r *recorder) snapshot() []gomidi.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gomidi.Message(nil), r.msgs...)
}

func TestMirrorSendsNoteOnThenSilences(t *testing.T) {
	rec := &recorder{}
	m := NewMirror(rec.send, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	m.Trigger(sequencer.Trigger{Kind: sequencer.NoteVoice, Name: "C4", Velocity: 1})
	m.Trigger(sequencer.Trigger{Kind: sequencer.DrumVoice, Name: "kick", Velocity: sequencer.DrumVolume})
	m.Trigger(sequencer.Trigger{Kind: sequencer.NoteVoice, Name: "nonsense", Velocity: 1})

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.snapshot()) < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	ons := map[uint8]uint8{} // note -> channel
	var offAll int
	for _, msg := range rec.snapshot() {
		var ch, key, vel, cc, val uint8
		switch {
		case msg.GetNoteOn(&ch, &key, &vel):
			ons[key] = ch
			if vel != 127 {
				t.Errorf("note %d velocity %d, want 127", key, vel)
			}
		case msg.GetControlChange(&ch, &cc, &val):
			if cc == 123 {
				offAll++
			}
		}
	}

	if ch, ok := ons[60]; !ok || ch != 2 {
		t.Errorf("C4 note on missing or on wrong channel: %v", ons)
	}
	if ch, ok := ons[36]; !ok || ch != DrumChannel {
		t.Errorf("kick note on missing or on wrong channel: %v", ons)
	}
	if offAll != 2 {
		t.Errorf("got %d all-notes-off messages, want 2", offAll)
	}

	// nothing is sent once closed
	n := len(rec.snapshot())
	m.write(gomidi.NoteOn(0, 60, 100))
	if len(rec.snapshot()) != n {
		t.Error("mirror wrote after close")
	}
}

func TestMirrorTriggerNeverBlocks(t *testing.T) {
	m := NewMirror(func(gomidi.Message) error { return nil }, 0)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			m.Trigger(sequencer.Trigger{Name: "C4"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Trigger blocked with nobody reading the queue")
	}
}

func TestCCSource(t *testing.T) {
	s := NewCCSource()
	if b, w, _ := s.Read(); b != 0.5 || w != 0.5 {
		t.Errorf("initial reading %v %v", b, w)
	}

	s.Handle(gomidi.ControlChange(0, BrightnessCC, 127))
	s.Handle(gomidi.ControlChange(3, WarmthCC, 0))
	s.Handle(gomidi.ControlChange(0, 7, 64))
	s.Handle(gomidi.NoteOn(0, 60, 100))

	b, w, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if b != 1 || w != 0 {
		t.Errorf("reading = %v %v, want 1 0", b, w)
	}
}

func TestPortsFind(t *testing.T) {
	var p Ports
	if _, err := p.FindOut("anything"); err == nil {
		t.Error("empty port list should not match")
	}
	if matches("IAC Driver Bus 1", "") {
		t.Error("empty name should never match")
	}
	if !matches("IAC Driver Bus 1", "iac") {
		t.Error("case insensitive match failed")
	}
}

func TestTranslateUndoesDrumVolume(t *testing.T) {
	m := NewMirror(func(gomidi.Message) error { return nil }, 0)
	ch, note, vel, length, err := m.translate(sequencer.Trigger{
		Kind:     sequencer.DrumVoice,
		Name:     "snare",
		Velocity: 0.5 * sequencer.DrumVolume,
	})
	if err != nil {
		t.Fatal(err)
	}
	if ch != DrumChannel || note != 38 || length != hitLength {
		t.Errorf("snare -> channel %d note %d length %v", ch, note, length)
	}
	if vel != Velocity(0.5) {
		t.Errorf("velocity %d, want %d", vel, Velocity(0.5))
	}
}
