package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nonomi/theme"
)

// RenderSpectrum draws one two-cell-wide bar per band, coloured by level
func RenderSpectrum(bands []float64, th *theme.Theme) string {
	levels := th.Symbols.Levels
	var out strings.Builder
	for _, mag := range bands {
		idx := int(mag * float64(len(levels)-1))
		idx = max(0, min(len(levels)-1, idx))
		ch := string(levels[idx])

		style := lipgloss.NewStyle().Foreground(th.Level(mag))
		out.WriteString(style.Render(ch + ch))
	}
	return out.String()
}

// RenderSteps draws the position within the bar: passed steps, the
// playhead and the steps still to come, grouped in beats
func RenderSteps(stepInBar, steps int, th *theme.Theme) string {
	on := lipgloss.NewStyle().Foreground(th.Accent())
	off := lipgloss.NewStyle().Foreground(th.Muted())

	var out strings.Builder
	for i := 0; i < steps; i++ {
		if i > 0 && i%4 == 0 {
			out.WriteString(" ")
		}
		switch {
		case i == stepInBar:
			out.WriteString(on.Render(string(th.Symbols.StepPlayhead)))
		case i < stepInBar:
			out.WriteString(on.Render(string(th.Symbols.StepPassed)))
		default:
			out.WriteString(off.Render(string(th.Symbols.StepEmpty)))
		}
	}
	return out.String()
}

var romans = []string{"", "I", "ii", "iii", "IV", "V", "vi", "vii°"}

// Roman returns the chord symbol for a scale degree (1-7)
func Roman(degree int) string {
	if degree < 1 || degree >= len(romans) {
		return "?"
	}
	return romans[degree]
}

// RenderProgression lists the progression with the current chord highlighted
func RenderProgression(degrees []int, current int, th *theme.Theme) string {
	hi := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dim := lipgloss.NewStyle().Foreground(th.Muted())

	parts := make([]string, len(degrees))
	for i, d := range degrees {
		if i == current {
			parts[i] = hi.Render(Roman(d))
		} else {
			parts[i] = dim.Render(Roman(d))
		}
	}
	return strings.Join(parts, " ")
}

// RenderMeter draws a labelled 0-1 value as a ten-cell bar
func RenderMeter(label string, v float64, th *theme.Theme) string {
	const cells = 10
	filled := max(0, min(cells, int(v*cells+0.5)))
	bar := strings.Repeat(string(th.Symbols.On), filled) + strings.Repeat(string(th.Symbols.Off), cells-filled)
	style := lipgloss.NewStyle().Foreground(th.Color(v))
	return fmt.Sprintf("%-10s %s %3.0f%%", label, style.Render(bar), v*100)
}

// RenderToggle draws "label ■" or "label □"
func RenderToggle(label string, on bool, th *theme.Theme) string {
	if on {
		return label + " " + lipgloss.NewStyle().Foreground(th.Accent()).Render(string(th.Symbols.On))
	}
	return label + " " + lipgloss.NewStyle().Foreground(th.Muted()).Render(string(th.Symbols.Off))
}
