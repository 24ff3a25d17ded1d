package sequencer

// Status is a snapshot of the engine for display
type Status struct {
	Running bool
	BPM     float64
	Swing   float64

	Step       int   // drum step in [0, Steps)
	Bar        int64 // bars elapsed since the last reset
	StepInBar  int
	Key        string
	ChordIndex int
	Degree     int
	Degrees    []int

	DrumsOn  bool
	MelodyOn bool
	Mutes    []bool // per drum instrument, kit order

	Notes   int    // active melodic voices
	Hits    int    // active drum voices
	Dropped uint64 // spawns rejected because a pool was full

	Brightness float64
	Warmth     float64
}
