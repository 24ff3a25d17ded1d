package sampler

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"nonomi/composer"
	"nonomi/debug"
	nerrors "nonomi/errors"
)

// Octaves with piano samples on disk
var Octaves = []int{1, 2, 3, 4, 5, 6}

// DrumFiles maps instrument names to their sample file
var DrumFiles = map[string]string{
	"kick":  "kick.wav",
	"snare": "snare-rev.wav",
	"hihat": "hat.wav",
}

// Cache holds every loaded sample for the life of the process.
// Samples are never mutated once added; Transform replaces them wholesale.
type Cache struct {
	mu      sync.RWMutex
	samples map[string]*Sample
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{samples: make(map[string]*Sample)}
}

// Add stores a sample under its name, replacing any previous one
func (c *Cache) Add(s *Sample) {
	c.mu.Lock()
	c.samples[s.Name] = s
	c.mu.Unlock()
}

// Lookup returns the named sample or a MissingSampleError
func (c *Cache) Lookup(name string) (*Sample, error) {
	c.mu.RLock()
	s, ok := c.samples[name]
	c.mu.RUnlock()
	if !ok {
		return nil, nerrors.NewMissingSample(name)
	}
	return s, nil
}

// Names returns the sorted sample names
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.samples))
	for n := range c.samples {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of samples
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.samples)
}

// Transform replaces each named sample with a processed copy. The original
// frames are left untouched so voices already holding them are unaffected.
func (c *Cache) Transform(names []string, fn func([][2]float32) [][2]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		s, ok := c.samples[n]
		if !ok {
			continue
		}
		in := make([][2]float32, len(s.Frames))
		copy(in, s.Frames)
		c.samples[n] = &Sample{Name: s.Name, Frames: fn(in), SampleRate: s.SampleRate}
	}
}

// NoteNames returns every note key the loader looks for ("C1" .. "B6")
func NoteNames() []string {
	var names []string
	for _, key := range composer.Keys() {
		for _, oct := range Octaves {
			names = append(names, key+strconv.Itoa(oct))
		}
	}
	return names
}

// LoadNotes loads "<Note><octave>v1.wav" files from dir in parallel and
// returns the names it found. Missing files are skipped silently.
func (c *Cache) LoadNotes(dir string) ([]string, error) {
	type job struct{ name, path string }
	var jobs []job
	for _, name := range NoteNames() {
		path := filepath.Join(dir, name+"v1.wav")
		if _, err := os.Stat(path); err == nil {
			jobs = append(jobs, job{name, path})
		}
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, j := range jobs {
		g.Go(func() error {
			s, err := loadFile(j.name, j.path)
			if err != nil {
				return err
			}
			c.Add(s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loaded := make([]string, len(jobs))
	for i, j := range jobs {
		loaded[i] = j.name
	}
	debug.Log("sampler", "loaded %d note samples from %s", len(loaded), dir)
	return loaded, nil
}

// LoadDrums loads the drum kit from dir. Files that are missing or fail to
// decode are logged and skipped; the sequencer treats them as missing samples.
func (c *Cache) LoadDrums(dir string) []string {
	var loaded []string
	for name, file := range DrumFiles {
		path := filepath.Join(dir, file)
		s, err := loadFile(name, path)
		if err != nil {
			debug.Log("sampler", "drum %s: %v", name, err)
			continue
		}
		c.Add(s)
		loaded = append(loaded, name)
	}
	sort.Strings(loaded)
	return loaded
}

func loadFile(name, path string) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(name, f)
}
