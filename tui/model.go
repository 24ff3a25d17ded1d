package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nonomi/composer"
	"nonomi/sequencer"
	"nonomi/theme"
	"nonomi/viz"
	"nonomi/widgets"
)

// Refresh rate of the spectrum
const fps = 30

const tempoStep = 5

type Model struct {
	Manager  *sequencer.Manager
	Theme    *theme.Theme
	spectrum *viz.Spectrum
	bands    []float64
	status   sequencer.Status
	message  string // last control error, cleared on the next key
	keyIdx   int    // -1 = random key on regenerate
	quitting bool
}

type UpdateMsg struct{}

type TickMsg time.Time

var keys = []widgets.KeyBinding{
	{Key: "space", Desc: "new progression"},
	{Key: "d", Desc: "drums"},
	{Key: "m", Desc: "melody"},
	{Key: "+/-", Desc: "tempo"},
	{Key: "k", Desc: "key"},
	{Key: "r", Desc: "restart bar"},
	{Key: "q", Desc: "quit"},
}

func NewModel(manager *sequencer.Manager, th *theme.Theme) Model {
	return Model{
		Manager:  manager,
		Theme:    th,
		spectrum: viz.NewSpectrum(manager.SampleRate(), viz.DefaultBands, 0.5),
		status:   manager.Status(),
		keyIdx:   -1,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		tick(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.message = ""
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case " ":
			m.Manager.Regenerate()

		case "d":
			m.Manager.ToggleDrums()

		case "m":
			m.Manager.ToggleMelody()

		case "+", "=":
			m.setTempo(m.status.BPM + tempoStep)

		case "-", "_":
			m.setTempo(m.status.BPM - tempoStep)

		case "r":
			m.Manager.ResetClock()

		case "k":
			m.cycleKey()
		}
		m.status = m.Manager.Status()

	case UpdateMsg:
		m.status = m.Manager.Status()
		return m, ListenForUpdates(m.Manager)

	case TickMsg:
		m.bands = m.spectrum.Update(m.Manager.History().Drain())
		m.status = m.Manager.Status()
		return m, tick()
	}

	return m, nil
}

func (m *Model) setTempo(bpm float64) {
	if err := m.Manager.SetTempo(bpm); err != nil {
		m.message = err.Error()
	}
}

// cycleKey steps through the twelve keys and then back to random
func (m *Model) cycleKey() {
	names := composer.Keys()
	m.keyIdx++
	name := ""
	if m.keyIdx >= len(names) {
		m.keyIdx = -1
	} else {
		name = names[m.keyIdx]
	}
	if err := m.Manager.SetKey(name); err != nil {
		m.message = err.Error()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.status
	th := m.Theme

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())

	playState := "STOP"
	if st.Running {
		playState = "PLAY"
	}
	key := st.Key
	if m.keyIdx < 0 {
		key += "*"
	}
	header := headerStyle.Render(fmt.Sprintf("nonomi  %s  %3.0fbpm  key:%-7s bar:%d", playState, st.BPM, key, st.Bar+1))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderSpectrum(m.bands, th))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderProgression(st.Degrees, st.ChordIndex, th))
	out.WriteString("   ")
	out.WriteString(widgets.RenderSteps(st.StepInBar, sequencer.StepsPerBar, th))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderToggle("drums", st.DrumsOn, th))
	out.WriteString("  ")
	out.WriteString(widgets.RenderToggle("melody", st.MelodyOn, th))
	out.WriteString(dimStyle.Render(fmt.Sprintf("  voices:%d+%d", st.Notes, st.Hits)))
	out.WriteString("\n")
	out.WriteString(widgets.RenderMeter("brightness", st.Brightness, th))
	out.WriteString("\n")
	out.WriteString(widgets.RenderMeter("warmth", st.Warmth, th))
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyLine(keys)))

	if m.message != "" {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(m.message))
	}

	return out.String()
}
