package sampler

import (
	"fmt"
	"io"

	wav "github.com/youpy/go-wav"
)

// Sample is an immutable stereo buffer shared by every voice that plays it
type Sample struct {
	Name       string
	Frames     [][2]float32
	SampleRate int
}

// Len returns the number of stereo frames
func (s *Sample) Len() int {
	return len(s.Frames)
}

// wavSource is what go-wav needs to read a file: sequential and random access
type wavSource interface {
	io.Reader
	io.ReaderAt
}

// Decode reads a PCM WAV stream into a stereo sample. Mono input is
// duplicated to both channels and the DC offset of each channel is removed.
func Decode(name string, src wavSource) (*Sample, error) {
	r := wav.NewReader(src)
	format, err := r.Format()
	if err != nil {
		return nil, fmt.Errorf("read format: %w", err)
	}
	if format.NumChannels < 1 || format.NumChannels > 2 {
		return nil, fmt.Errorf("unsupported channel count %d", format.NumChannels)
	}

	var frames [][2]float32
	for {
		samples, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read samples: %w", err)
		}
		for _, s := range samples {
			l := float32(r.FloatValue(s, 0))
			rr := l
			if format.NumChannels == 2 {
				rr = float32(r.FloatValue(s, 1))
			}
			frames = append(frames, [2]float32{l, rr})
		}
	}

	removeDC(frames)

	return &Sample{
		Name:       name,
		Frames:     frames,
		SampleRate: int(format.SampleRate),
	}, nil
}

// Encode writes frames as 16-bit stereo PCM
func Encode(w io.Writer, frames [][2]float32, sampleRate int) error {
	ww := wav.NewWriter(w, uint32(len(frames)), 2, uint32(sampleRate), 16)

	out := make([]wav.Sample, len(frames))
	for i, f := range frames {
		out[i].Values[0] = toPCM16(f[0])
		out[i].Values[1] = toPCM16(f[1])
	}
	return ww.WriteSamples(out)
}

func toPCM16(v float32) int {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int(v * 32767)
}

func removeDC(frames [][2]float32) {
	if len(frames) == 0 {
		return
	}
	var sum [2]float64
	for _, f := range frames {
		sum[0] += float64(f[0])
		sum[1] += float64(f[1])
	}
	n := float64(len(frames))
	mean := [2]float32{float32(sum[0] / n), float32(sum[1] / n)}
	for i := range frames {
		frames[i][0] -= mean[0]
		frames[i][1] -= mean[1]
	}
}
