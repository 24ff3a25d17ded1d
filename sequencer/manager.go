package sequencer

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"nonomi/composer"
	"nonomi/debug"
	nerrors "nonomi/errors"
	"nonomi/sampler"
)

// Harmony supplies chords, bass and melody notes by sample name
type Harmony interface {
	ChordNotes() []string
	BassNote() string
	MelodyNote() (string, bool)
	AdvanceChord() composer.Changes
	GenerateProgression()

	SetMelodyDensity(float64)
	SetMelodyOff(bool)
	MelodyOff() bool
	SetKey(string) error
	Key() string
	Position() (index, degree int)
	Degrees() []int
}

// Effects is the master chain applied to the mixed bus
type Effects interface {
	Process(buf [][2]float32)
	UpdateFilter(brightness float64)
}

// SampleCache resolves note and instrument names to samples
type SampleCache interface {
	Lookup(name string) (*sampler.Sample, error)
}

// RenderFunc fills out with the next len(out) frames
type RenderFunc func(out [][2]float32)

// Device drives a RenderFunc from its own goroutine. Stop must not return
// while a render call is in flight, and no call may follow it.
type Device interface {
	Start(render RenderFunc) error
	Stop() error
}

// Trigger describes a spawned voice for mirrors such as MIDI out
type Trigger struct {
	Kind     VoiceKind
	Name     string
	Velocity float32
	Delay    time.Duration // from the start of the block
}

// TriggerSink receives triggers after each block. Trigger must not block.
type TriggerSink interface {
	Trigger(t Trigger)
}

// Velocity ranges and strum timing
const (
	bassVelMin   = 0.5
	bassVelMax   = 0.7
	chordVelMin  = 0.3
	chordVelMax  = 0.5
	melodyVelMin = 0.25
	melodyVelMax = 0.40

	strumMinMs = 20
	strumMaxMs = 50

	DefaultMaxVoices = 64
	maxBPM           = 999
)

// Options configures a Manager
type Options struct {
	SampleRate int
	BlockSize  int // bus size; larger device requests are split
	BPM        float64
	Swing      float64
	MaxVoices  int // per pool

	Rand    *rand.Rand
	Kit     []Instrument
	Harmony Harmony
	Effects Effects
	Samples SampleCache
	Device  Device      // optional, required by Start
	Sink    TriggerSink // optional
}

// Manager owns the engine state and renders audio blocks. Control methods
// may be called from any goroutine; Render is called by the device.
type Manager struct {
	mu      sync.Mutex // guards everything below up to bus
	clock   *Clock
	drums   *Drums
	harmony Harmony
	samples SampleCache
	rng     *rand.Rand

	notes     []Voice
	hits      []Voice
	maxVoices int
	dropped   uint64

	events   []Event
	hitBuf   []Hit
	triggers []Trigger

	// audio goroutine only
	bus     [][2]float32
	pending []Trigger

	fx      Effects
	sink    TriggerSink
	history *History

	brightness atomic.Uint64 // float64 bits
	warmth     atomic.Uint64

	deviceMu sync.Mutex
	device   Device
	running  bool

	// Notify TUI of chord changes
	UpdateChan chan struct{}
}

// NewManager validates opts and builds a stopped engine
func NewManager(opts Options) (*Manager, error) {
	if opts.SampleRate <= 0 {
		return nil, nerrors.NewConfigError("sample rate", opts.SampleRate, "must be positive")
	}
	if opts.BlockSize <= 0 {
		return nil, nerrors.NewConfigError("block size", opts.BlockSize, "must be positive")
	}
	if err := validateBPM(opts.BPM); err != nil {
		return nil, err
	}
	if err := validateSwing(opts.Swing); err != nil {
		return nil, err
	}
	if opts.Harmony == nil || opts.Effects == nil || opts.Samples == nil {
		return nil, nerrors.NewConfigError("options", nil, "harmony, effects and samples are required")
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	kit := opts.Kit
	if kit == nil {
		kit = DefaultKit()
	}
	maxVoices := opts.MaxVoices
	if maxVoices <= 0 {
		maxVoices = DefaultMaxVoices
	}

	clock := NewClock(opts.BPM, opts.SampleRate)
	clock.SetSwing(opts.Swing)

	m := &Manager{
		clock:      clock,
		drums:      NewDrums(rng, kit),
		harmony:    opts.Harmony,
		samples:    opts.Samples,
		rng:        rng,
		notes:      make([]Voice, 0, maxVoices),
		hits:       make([]Voice, 0, maxVoices),
		maxVoices:  maxVoices,
		events:     make([]Event, 0, 64),
		hitBuf:     make([]Hit, 0, len(kit)),
		triggers:   make([]Trigger, 0, 2*maxVoices),
		pending:    make([]Trigger, 0, 2*maxVoices),
		bus:        make([][2]float32, opts.BlockSize),
		fx:         opts.Effects,
		sink:       opts.Sink,
		history:    NewHistory(HistorySize, opts.BlockSize),
		device:     opts.Device,
		UpdateChan: make(chan struct{}, 1),
	}
	return m, nil
}

func validateBPM(bpm float64) error {
	if math.IsNaN(bpm) || bpm <= 0 || bpm > maxBPM {
		return nerrors.NewConfigError("tempo", bpm, "must be in (0, 999] bpm")
	}
	return nil
}

func validateSwing(s float64) error {
	if math.IsNaN(s) || s < 0 || s > 1 {
		return nerrors.NewConfigError("swing", s, "must be in [0, 1]")
	}
	return nil
}

func validateUnit(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return nerrors.NewConfigError(field, v, "must be in [0, 1]")
	}
	return nil
}

// Start opens the output stream and begins rendering
func (m *Manager) Start() error {
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()

	if m.running {
		return nil
	}
	if m.device == nil {
		return nerrors.NewStreamError("start", errors.New("no output device"))
	}
	if err := m.device.Start(m.Render); err != nil {
		var se *nerrors.StreamError
		if errors.As(err, &se) {
			return err
		}
		return nerrors.NewStreamError("start", err)
	}
	m.running = true
	debug.Log("sequencer", "started: %.1f bpm", m.BPM())
	return nil
}

// Stop halts the stream. It returns once the device guarantees that no
// render call is running and none will follow.
func (m *Manager) Stop() error {
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()

	if !m.running {
		return nil
	}
	m.running = false
	if err := m.device.Stop(); err != nil {
		var se *nerrors.StreamError
		if errors.As(err, &se) {
			return err
		}
		return nerrors.NewStreamError("stop", err)
	}
	debug.Log("sequencer", "stopped")
	return nil
}

// Running reports whether the stream is open
func (m *Manager) Running() bool {
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()
	return m.running
}

// ResetClock rewinds the clock and the drum step counter
func (m *Manager) ResetClock() {
	m.mu.Lock()
	m.clock.Reset()
	m.drums.ResetStep()
	m.mu.Unlock()
}

// SetTempo changes the tempo, keeping the position within the current step
func (m *Manager) SetTempo(bpm float64) error {
	if err := validateBPM(bpm); err != nil {
		return err
	}
	m.mu.Lock()
	m.clock.SetBPM(bpm)
	m.mu.Unlock()
	debug.Log("sequencer", "tempo %.1f", bpm)
	return nil
}

// BPM returns the current tempo
func (m *Manager) BPM() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clock.BPM()
}

// SetSwing sets the swing ratio (0 = straight, 1 = full triplet feel)
func (m *Manager) SetSwing(ratio float64) error {
	if err := validateSwing(ratio); err != nil {
		return err
	}
	m.mu.Lock()
	m.clock.SetSwing(ratio)
	m.mu.Unlock()
	return nil
}

// SetKey pins the key used by following chords; "" lets regeneration pick
// a random key again.
func (m *Manager) SetKey(name string) error {
	if name != "" {
		if _, err := composer.ParseNote(name); err != nil {
			return nerrors.NewConfigError("key", name, err.Error())
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.harmony.SetKey(name)
}

// Regenerate starts a new progression from the top of the bar
func (m *Manager) Regenerate() {
	m.mu.Lock()
	m.harmony.GenerateProgression()
	m.clock.Reset()
	m.drums.ResetStep()
	key := m.harmony.Key()
	m.mu.Unlock()

	debug.Log("sequencer", "regenerated progression in %s", key)
	m.notify()
}

// ToggleDrums enables or disables drum triggering
func (m *Manager) ToggleDrums() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drums.Toggle()
	return m.drums.Enabled()
}

// ToggleMelody switches the melody line on or off
func (m *Manager) ToggleMelody() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	off := !m.harmony.MelodyOff()
	m.harmony.SetMelodyOff(off)
	return !off
}

// UpdateBrightness steers the master filter. It does not take the engine lock.
func (m *Manager) UpdateBrightness(v float64) error {
	if err := validateUnit("brightness", v); err != nil {
		return err
	}
	m.brightness.Store(math.Float64bits(v))
	m.fx.UpdateFilter(v)
	return nil
}

// UpdateSensor applies a sensor reading. Warmth is kept for display only.
func (m *Manager) UpdateSensor(brightness, warmth float64) error {
	if err := validateUnit("warmth", warmth); err != nil {
		return err
	}
	if err := m.UpdateBrightness(brightness); err != nil {
		return err
	}
	m.warmth.Store(math.Float64bits(warmth))
	return nil
}

// History returns the ring of recently rendered blocks
func (m *Manager) History() *History {
	return m.history
}

// SampleRate returns the engine sample rate
func (m *Manager) SampleRate() int {
	return m.clock.SampleRate()
}

// SamplesPerBar returns the length of one bar at the current tempo
func (m *Manager) SamplesPerBar() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clock.SamplesPerBar()
}

// Status returns a snapshot for display
func (m *Manager) Status() Status {
	running := m.Running()

	m.mu.Lock()
	defer m.mu.Unlock()

	idx, degree := m.harmony.Position()
	sps := int64(m.clock.SamplesPerSixteenth())
	steps := m.clock.TotalSamples() / sps
	return Status{
		Running:    running,
		BPM:        m.clock.BPM(),
		Swing:      m.clock.Swing(),
		Step:       m.drums.Step(),
		Bar:        steps / StepsPerBar,
		StepInBar:  int(steps % StepsPerBar),
		Key:        m.harmony.Key(),
		ChordIndex: idx,
		Degree:     degree,
		Degrees:    m.harmony.Degrees(),
		DrumsOn:    m.drums.Enabled(),
		MelodyOn:   !m.harmony.MelodyOff(),
		Mutes:      m.drums.Mutes(),
		Notes:      len(m.notes),
		Hits:       len(m.hits),
		Dropped:    m.dropped,
		Brightness: math.Float64frombits(m.brightness.Load()),
		Warmth:     math.Float64frombits(m.warmth.Load()),
	}
}

// Render fills out with the next len(out) frames. Called from the device
// goroutine, one call at a time.
func (m *Manager) Render(out [][2]float32) {
	for len(out) > 0 {
		n := min(len(out), len(m.bus))
		m.renderBlock(out[:n])
		out = out[n:]
	}
}

func (m *Manager) renderBlock(out [][2]float32) {
	bus := m.bus[:len(out)]
	clear(bus)

	if m.mix(bus) {
		m.process(bus)
	}

	for i, f := range bus {
		out[i] = [2]float32{clip(f[0]), clip(f[1])}
	}
	m.history.Push(out)

	if m.sink != nil {
		for _, t := range m.pending {
			m.sink.Trigger(t)
		}
	}
	m.pending = m.pending[:0]
}

// mix runs the locked part of a block: events, spawning and mixing. A panic
// in a collaborator while dispatching events silences the block instead of
// killing the stream. A voice that faults is dropped on its own.
func (m *Manager) mix(bus [][2]float32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dispatch(len(bus)) {
		clear(bus)
		return false
	}

	var noteFaults, hitFaults int
	m.notes, noteFaults = mixPool(m.notes, bus)
	m.hits, hitFaults = mixPool(m.hits, bus)
	if faults := noteFaults + hitFaults; faults > 0 {
		debug.LogEvery(100, "sequencer", "dropped %d faulting voices", faults)
	}

	m.pending = append(m.pending, m.triggers...)
	m.triggers = m.triggers[:0]
	return true
}

// dispatch advances the clock and acts on its events. Called with mu held.
func (m *Manager) dispatch(frames int) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogEvery(100, "sequencer", "render fault: %v", r)
			m.triggers = m.triggers[:0]
			ok = false
		}
	}()

	m.events = m.clock.Advance(frames, m.events[:0])
	for _, ev := range m.events {
		switch ev.Kind {
		case DrumStep:
			m.hitBuf = m.drums.AdvanceStep(m.hitBuf[:0])
			for _, h := range m.hitBuf {
				m.spawn(DrumVoice, h.Instrument, h.Velocity, ev.Offset)
			}
		case MelodyStep:
			if name, ok := m.harmony.MelodyNote(); ok {
				m.spawn(NoteVoice, name, m.uniform(melodyVelMin, melodyVelMax), ev.Offset)
			}
		case ChordChange:
			m.triggerChord(ev.Offset)
			m.advanceChord()
		}
	}
	return true
}

func (m *Manager) process(bus [][2]float32) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogEvery(100, "fx", "effects fault: %v", r)
			clear(bus)
		}
	}()
	m.fx.Process(bus)
}

// triggerChord plays the bass at offset and strums the chord from the
// same point, each note 20-50ms after the previous one.
func (m *Manager) triggerChord(offset int) {
	m.spawn(NoteVoice, m.harmony.BassNote(), m.uniform(bassVelMin, bassVelMax), offset)

	sr := m.clock.SampleRate()
	delay := 0
	for i, name := range m.harmony.ChordNotes() {
		if i > 0 {
			ms := strumMinMs + m.rng.Float64()*(strumMaxMs-strumMinMs)
			delay += max(1, int(ms*float64(sr)/1000))
		}
		m.spawn(NoteVoice, name, m.uniform(chordVelMin, chordVelMax), offset+delay)
	}
}

func (m *Manager) advanceChord() {
	ch := m.harmony.AdvanceChord()
	if ch.RandomizeDrums {
		m.drums.RandomizeMutes()
	}
	if ch.MelodyChanged {
		m.harmony.SetMelodyDensity(ch.MelodyDensity)
		m.harmony.SetMelodyOff(ch.MelodyOff)
	}
	m.notify()
}

// spawn adds a voice to its pool. Missing samples and full pools are
// logged and skipped.
func (m *Manager) spawn(kind VoiceKind, name string, vel float32, delay int) {
	s, err := m.samples.Lookup(name)
	if err == nil && (s == nil || s.Len() == 0) {
		err = nerrors.NewMissingSample(name)
	}
	if err != nil {
		debug.Log("sequencer", "skip voice: %v", err)
		return
	}

	pool := &m.notes
	if kind == DrumVoice {
		pool = &m.hits
	}
	if len(*pool) >= m.maxVoices {
		m.dropped++
		debug.LogEvery(64, "sequencer", "voice pool full, dropped %s (%d total)", name, m.dropped)
		return
	}
	*pool = append(*pool, Voice{
		Kind:       kind,
		Name:       name,
		Buffer:     s,
		Velocity:   vel,
		StartDelay: delay,
	})

	if m.sink != nil && len(m.triggers) < cap(m.triggers) {
		m.triggers = append(m.triggers, Trigger{
			Kind:     kind,
			Name:     name,
			Velocity: vel,
			Delay:    time.Duration(delay) * time.Second / time.Duration(m.clock.SampleRate()),
		})
	}
}

func (m *Manager) uniform(lo, hi float32) float32 {
	return lo + m.rng.Float32()*(hi-lo)
}

func (m *Manager) notify() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

func clip(x float32) float32 {
	return max(-1, min(1, x))
}
