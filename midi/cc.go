package midi

import (
	"fmt"
	"math"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"nonomi/debug"
)

// Controllers read by CCSource
const (
	BrightnessCC uint8 = 1 // mod wheel
	WarmthCC     uint8 = 2 // breath
)

// CCSource is a sensor fed by control changes from a MIDI input: any
// controller that sends CC1/CC2 can stand in for the light sensor.
type CCSource struct {
	brightness atomic.Uint64 // float64 bits
	warmth     atomic.Uint64
	stopFunc   func()
}

// NewCCSource creates a source at the midpoint with no input attached
func NewCCSource() *CCSource {
	s := &CCSource{}
	s.brightness.Store(math.Float64bits(0.5))
	s.warmth.Store(math.Float64bits(0.5))
	return s
}

// ListenCC opens in and feeds its control changes into a new CCSource
func ListenCC(in drivers.In) (*CCSource, error) {
	s := NewCCSource()
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		s.Handle(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	s.stopFunc = stop
	debug.Log("midi", "reading sensor CCs from %s", in.String())
	return s, nil
}

// Handle applies one incoming message
func (s *CCSource) Handle(msg gomidi.Message) {
	var channel, controller, value uint8
	if !msg.GetControlChange(&channel, &controller, &value) {
		return
	}
	v := float64(value) / 127
	switch controller {
	case BrightnessCC:
		s.brightness.Store(math.Float64bits(v))
	case WarmthCC:
		s.warmth.Store(math.Float64bits(v))
	}
}

// Read returns the latest values
func (s *CCSource) Read() (float64, float64, error) {
	return math.Float64frombits(s.brightness.Load()), math.Float64frombits(s.warmth.Load()), nil
}

func (s *CCSource) Close() error {
	if s.stopFunc != nil {
		s.stopFunc()
	}
	return nil
}
