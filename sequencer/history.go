package sequencer

import "sync"

// HistorySize is how many processed blocks the engine keeps for visualisers
const HistorySize = 5

// History is a fixed-capacity ring of recent output blocks. Push is called
// from the audio goroutine and never allocates; Drain copies into buffers
// owned by the reader side. When full, the oldest block is overwritten.
type History struct {
	mu    sync.Mutex
	slots [][][2]float32
	lens  []int
	head  int // next slot to write
	count int

	readMu sync.Mutex // serialises Drain; guards read and out
	read   [][][2]float32
	out    [][][2]float32
}

// NewHistory creates a ring of capacity blocks of up to blockSize frames
func NewHistory(capacity, blockSize int) *History {
	capacity = max(1, capacity)
	h := &History{
		slots: make([][][2]float32, capacity),
		lens:  make([]int, capacity),
		read:  make([][][2]float32, capacity),
		out:   make([][][2]float32, 0, capacity),
	}
	for i := range h.slots {
		h.slots[i] = make([][2]float32, blockSize)
		h.read[i] = make([][2]float32, blockSize)
	}
	return h
}

// Push stores a copy of block. Frames beyond the slot size are dropped.
func (h *History) Push(block [][2]float32) {
	h.mu.Lock()
	n := copy(h.slots[h.head], block)
	h.lens[h.head] = n
	h.head = (h.head + 1) % len(h.slots)
	if h.count < len(h.slots) {
		h.count++
	}
	h.mu.Unlock()
}

// Drain returns the stored blocks oldest first and empties the ring. The
// returned blocks are reused by the next Drain.
func (h *History) Drain() [][][2]float32 {
	h.readMu.Lock()
	defer h.readMu.Unlock()

	h.mu.Lock()
	h.out = h.out[:0]
	start := (h.head - h.count + len(h.slots)) % len(h.slots)
	for i := 0; i < h.count; i++ {
		idx := (start + i) % len(h.slots)
		n := copy(h.read[i], h.slots[idx][:h.lens[idx]])
		h.out = append(h.out, h.read[i][:n])
	}
	h.count = 0
	h.mu.Unlock()

	return h.out
}

// Len returns the number of stored blocks
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Cap returns the ring capacity
func (h *History) Cap() int {
	return len(h.slots)
}
