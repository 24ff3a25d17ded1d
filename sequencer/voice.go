package sequencer

import "nonomi/sampler"

// VoiceKind tells melodic notes from percussion hits
type VoiceKind uint8

const (
	NoteVoice VoiceKind = iota
	DrumVoice
)

// Voice is one playing sound. Its cursor only moves through MixInto/Chunk.
type Voice struct {
	Kind       VoiceKind
	Name       string
	Buffer     *sampler.Sample // shared, never written
	Position   int             // frames consumed, silence prefix included
	Velocity   float32
	StartDelay int // frames of silence before the buffer starts
}

// Finished reports whether the silence prefix and the whole buffer have been consumed
func (v *Voice) Finished() bool {
	return v.Position >= v.StartDelay+v.Buffer.Len()
}

// Chunk renders the next n frames into a new buffer
func (v *Voice) Chunk(n int) [][2]float32 {
	out := make([][2]float32, n)
	v.MixInto(out)
	return out
}

// MixInto adds the next len(dst) frames of this voice to dst. The cursor
// advances over silence consumed and audio copied, never over the zero
// padding past the end of the buffer.
func (v *Voice) MixInto(dst [][2]float32) {
	n := len(dst)
	i := 0

	if v.Position < v.StartDelay {
		silence := min(n, v.StartDelay-v.Position)
		v.Position += silence
		if silence == n {
			return
		}
		i = silence
	}

	frames := v.Buffer.Frames
	src := v.Position - v.StartDelay
	count := min(n-i, len(frames)-src)
	if count <= 0 {
		return
	}

	vel := v.Velocity
	for k, f := range frames[src : src+count] {
		dst[i+k][0] += f[0] * vel
		dst[i+k][1] += f[1] * vel
	}
	v.Position += count
}

// mixPool mixes every voice into bus and evicts the finished ones, along
// with any voice that faults while mixing. It returns the pool and the
// number of faulting voices. Pool order is not preserved.
func mixPool(pool []Voice, bus [][2]float32) ([]Voice, int) {
	faults := 0
	for i := 0; i < len(pool); {
		done, faulted := mixVoice(&pool[i], bus)
		if faulted {
			faults++
		}
		if done {
			last := len(pool) - 1
			pool[i] = pool[last]
			pool[last] = Voice{}
			pool = pool[:last]
			continue
		}
		i++
	}
	return pool, faults
}

// mixVoice mixes one voice and reports whether it should leave the pool
func mixVoice(v *Voice, bus [][2]float32) (done, faulted bool) {
	defer func() {
		if r := recover(); r != nil {
			done, faulted = true, true
		}
	}()
	v.MixInto(bus)
	return v.Finished(), false
}
