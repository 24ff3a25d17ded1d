package tui

import (
	"math/rand/v2"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"nonomi/composer"
	"nonomi/fx"
	"nonomi/sampler"
	"nonomi/sequencer"
	"nonomi/theme"
)

func newModel(t *testing.T, bpm float64) Model {
	t.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	mgr, err := sequencer.NewManager(sequencer.Options{
		SampleRate: 44100,
		BlockSize:  512,
		BPM:        bpm,
		Rand:       rng,
		Harmony:    composer.New(rng, 8, 4),
		Effects:    fx.NewMaster(44100),
		Samples:    sampler.NewCache(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(mgr, theme.New(theme.Default()))
}

func press(m Model, key string) (Model, tea.Cmd) {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	if key == " " {
		msg = tea.KeyMsg{Type: tea.KeySpace}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestTempoKeys(t *testing.T) {
	m := newModel(t, 120)
	m, _ = press(m, "+")
	if m.status.BPM != 125 {
		t.Errorf("bpm after + = %v", m.status.BPM)
	}
	m, _ = press(m, "-")
	m, _ = press(m, "-")
	if m.status.BPM != 115 {
		t.Errorf("bpm after two - = %v", m.status.BPM)
	}
}

func TestTempoErrorShown(t *testing.T) {
	m := newModel(t, 5)
	m, _ = press(m, "-")
	if m.message == "" {
		t.Fatal("expected an error message for 0 bpm")
	}
	if m.status.BPM != 5 {
		t.Errorf("bpm changed to %v", m.status.BPM)
	}
	if !strings.Contains(m.View(), "tempo") {
		t.Error("error not shown in view")
	}

	// next key clears it
	m, _ = press(m, "d")
	if m.message != "" {
		t.Errorf("message not cleared: %q", m.message)
	}
}

func TestToggleKeys(t *testing.T) {
	m := newModel(t, 120)
	m, _ = press(m, "d")
	if m.status.DrumsOn {
		t.Error("drums still on")
	}
	m, _ = press(m, "m")
	if m.status.MelodyOn {
		t.Error("melody still on")
	}
	m, _ = press(m, " ")
	if m.status.ChordIndex != 0 {
		t.Errorf("chord index %d after regenerate", m.status.ChordIndex)
	}
}

func TestKeyCycle(t *testing.T) {
	m := newModel(t, 120)
	m, _ = press(m, "k")
	if m.status.Key != "C" {
		t.Errorf("first key = %q, want C", m.status.Key)
	}
	m, _ = press(m, "k")
	if m.status.Key != "Csharp" {
		t.Errorf("second key = %q, want Csharp", m.status.Key)
	}
	for range 11 {
		m, _ = press(m, "k")
	}
	if m.keyIdx != -1 {
		t.Errorf("key index %d, want back to random", m.keyIdx)
	}
}

func TestQuit(t *testing.T) {
	m := newModel(t, 120)
	m, cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("no command on quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if m.View() != "" {
		t.Error("view should be empty once quitting")
	}
}

func TestTickDrainsHistory(t *testing.T) {
	m := newModel(t, 120)
	m.Manager.Render(make([][2]float32, 1024))
	if m.Manager.History().Len() == 0 {
		t.Fatal("render left no history")
	}

	next, cmd := m.Update(TickMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Error("tick not rescheduled")
	}
	if m.Manager.History().Len() != 0 {
		t.Error("tick did not drain history")
	}
	if !strings.Contains(m.View(), "nonomi") {
		t.Error("header missing")
	}
}
