package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Log entries are queued and written by a single goroutine so that callers on
// the audio goroutine never touch the filesystem.
type entry struct {
	at       time.Time
	category string
	format   string
	args     []any
}

const queueSize = 256

var (
	mu      sync.Mutex
	file    *os.File
	queue   chan entry
	done    chan struct{}
	enabled atomic.Bool
	dropped atomic.Uint64
)

// DefaultPath returns ~/.config/nonomi/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "nonomi", "debug.log")
}

// Enable starts debug logging to path (truncated)
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled.Load() {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	queue = make(chan entry, queueSize)
	done = make(chan struct{})
	dropped.Store(0)

	write(f, entry{at: time.Now(), category: "debug", format: "=== Debug logging started ==="})

	go drain(f, queue, done)
	enabled.Store(true)
	return nil
}

// Disable flushes pending entries and closes the log
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if !enabled.Load() {
		return
	}
	enabled.Store(false)

	close(queue)
	<-done

	if n := dropped.Load(); n > 0 {
		write(file, entry{at: time.Now(), category: "debug", format: "%d entries dropped", args: []any{n}})
	}
	file.Close()
	file = nil
}

// Enabled reports whether logging is on
func Enabled() bool {
	return enabled.Load()
}

// Dropped returns how many entries were discarded because the queue was full
func Dropped() uint64 {
	return dropped.Load()
}

// Log queues a message for the debug log. It never blocks: when the writer
// falls behind the entry is dropped and counted.
func Log(category, format string, args ...any) {
	if !enabled.Load() {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if queue == nil || !enabled.Load() {
		return
	}

	select {
	case queue <- entry{at: time.Now(), category: category, format: format, args: args}:
	default:
		dropped.Add(1)
	}
}

// LogEvery logs only every N calls (use for high-frequency events)
var (
	countersMu sync.Mutex
	counters   = make(map[string]int)
)

func LogEvery(n int, category, format string, args ...any) {
	countersMu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	countersMu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

func drain(f *os.File, q <-chan entry, done chan<- struct{}) {
	defer close(done)
	for e := range q {
		write(f, e)
	}
}

func write(f *os.File, e entry) {
	ts := e.at.Format("15:04:05.000")
	msg := e.format
	if len(e.args) > 0 {
		msg = fmt.Sprintf(e.format, e.args...)
	}
	fmt.Fprintf(f, "[%s] %-10s %s\n", ts, e.category, msg)
	f.Sync() // flush immediately so we see logs even on crash
}
