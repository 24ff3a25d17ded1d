package output

import (
	"context"
	"fmt"
	"io"

	"nonomi/debug"
	"nonomi/sampler"
	"nonomi/sequencer"
)

// RenderWAV renders frames of audio as fast as possible and writes them
// as a 16-bit stereo WAV file.
func RenderWAV(ctx context.Context, w io.Writer, render sequencer.RenderFunc, frames, blockSize, sampleRate int) error {
	if frames <= 0 || blockSize <= 0 {
		return fmt.Errorf("render %d frames in blocks of %d: nothing to do", frames, blockSize)
	}

	out := make([][2]float32, frames)
	for pos := 0; pos < frames; pos += blockSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(pos+blockSize, frames)
		render(out[pos:end])
	}

	if err := sampler.Encode(w, out, sampleRate); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	debug.Log("output", "rendered %d frames (%.1fs)", frames, float64(frames)/float64(sampleRate))
	return nil
}
