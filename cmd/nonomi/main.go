package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nonomi",
	Short: "Generative lo-fi piano and drums",
	Long: `nonomi plays an endless generative piece: diatonic chord progressions
strummed on a sampled piano, a wandering melody and probabilistic drums,
shaped by a brightness sensor.

Running nonomi with no subcommand is the same as "nonomi play".`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runPlay,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in real time with the terminal UI",
	Long: `Play through the system audio device and show the spectrum,
progression and controls.

Examples:
  nonomi play
  nonomi play --bpm 90 --key Fsharp --midi-out "IAC"
  nonomi play --null --sensor midi --midi-in "nanoKONTROL"`,
	RunE: runPlay,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render bars to a WAV file",
	Long: `Render the engine offline, as fast as possible, to a 16-bit stereo WAV.
With a fixed --seed the output is reproducible.

Example:
  nonomi render --bars 32 --seed 7 -o take.wav`,
	RunE: runRender,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports",
	RunE:  runPorts,
}

// Shared flags
var (
	configPath  string
	debugLog    bool
	palettePath string
	flagBPM     float64
	flagSwing   float64
	flagKey     string
	flagSamples string
	flagDrums   string
	flagSeed    uint64
	flagBlock   int
	flagSensor  string
	flagMIDIOut string
	flagMIDIIn  string
)

// Command flags
var (
	nullAudio  bool
	renderBars int
	renderOut  string
)

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(portsCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default ~/.config/nonomi/config.json)")
	pf.BoolVar(&debugLog, "debug", false, "Write a debug log to ~/.config/nonomi/debug.log")
	pf.Float64Var(&flagBPM, "bpm", 0, "Tempo in beats per minute")
	pf.Float64Var(&flagSwing, "swing", 0, "Swing ratio, 0 (straight) to 1 (triplet)")
	pf.StringVar(&flagKey, "key", "", "Pin the key (C, Csharp, ... B); random if unset")
	pf.StringVar(&flagSamples, "samples", "", "Directory of piano samples (<Note><octave>v1.wav)")
	pf.StringVar(&flagDrums, "drums", "", "Directory of drum samples (kick.wav, snare-rev.wav, hat.wav)")
	pf.Uint64Var(&flagSeed, "seed", 0, "Random seed, 0 for time based")
	pf.IntVar(&flagBlock, "block", 0, "Audio block size in frames")
	pf.StringVar(&flagSensor, "sensor", "", "Sensor source: none, drift or midi")
	pf.StringVar(&flagMIDIOut, "midi-out", "", "Mirror notes to the MIDI output matching this name")
	pf.StringVar(&flagMIDIIn, "midi-in", "", "Read sensor CCs from the MIDI input matching this name")

	for _, c := range []*cobra.Command{rootCmd, playCmd} {
		c.Flags().BoolVar(&nullAudio, "null", false, "Render in real time without an audio device")
		c.Flags().StringVar(&palettePath, "palette", "", "GIMP .gpl palette for the UI")
	}

	renderCmd.Flags().IntVar(&renderBars, "bars", 16, "Number of bars to render")
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "nonomi.wav", "Output WAV file")
}
