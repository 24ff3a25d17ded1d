package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Spectrum bar heights, silent to full
	Levels []rune

	// Step row
	StepEmpty    rune // · step not yet reached
	StepPassed   rune // ● step already played this bar
	StepPlayhead rune // ▶ current step

	// Toggles
	On  rune // ■
	Off rune // □
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Levels: []rune(" ▁▂▃▄▅▆▇█"),

			StepEmpty:    '·',
			StepPassed:   '●',
			StepPlayhead: '▶',

			On:  '■',
			Off: '□',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0   // night blue
	RoleMuted   = 0.25  // slate
	RoleFG      = 0.375 // pale blue (readable)
	RoleLow     = 0.5   // green
	RoleAccent  = 0.625 // lime
	RoleMid     = 0.75  // amber
	RoleWarning = 0.875 // orange
	RoleHigh    = 1.0   // red
)

// Level thresholds for spectrum colouring
const (
	LevelMid  = 0.4
	LevelHigh = 0.75
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// Level returns green, amber or red for a 0-1 magnitude
func (t *Theme) Level(mag float64) lipgloss.Color {
	switch {
	case mag < LevelMid:
		return rgbToLipgloss(t.Palette.Lookup(RoleLow))
	case mag < LevelHigh:
		return rgbToLipgloss(t.Palette.Lookup(RoleMid))
	default:
		return rgbToLipgloss(t.Palette.Lookup(RoleHigh))
	}
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
