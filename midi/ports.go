package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PortTimeout bounds port enumeration; some MIDI services hang on listing
const PortTimeout = 3 * time.Second

// ErrPortTimeout is returned when the MIDI service does not answer
var ErrPortTimeout = errors.New("midi port scan timed out")

// Ports holds the input and output ports found by a scan
type Ports struct {
	Ins  []drivers.In
	Outs []drivers.Out
}

// InNames returns the input port names
func (p Ports) InNames() []string {
	names := make([]string, len(p.Ins))
	for i, in := range p.Ins {
		names[i] = in.String()
	}
	return names
}

// OutNames returns the output port names
func (p Ports) OutNames() []string {
	names := make([]string, len(p.Outs))
	for i, out := range p.Outs {
		names[i] = out.String()
	}
	return names
}

// Scan lists MIDI ports, giving up after timeout
func Scan(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{Ins: gomidi.GetInPorts(), Outs: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrPortTimeout
	}
}

// FindOut returns the first output whose name contains name (case insensitive)
func (p Ports) FindOut(name string) (drivers.Out, error) {
	for _, out := range p.Outs {
		if matches(out.String(), name) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("no midi output matching %q", name)
}

// FindIn returns the first input whose name contains name (case insensitive)
func (p Ports) FindIn(name string) (drivers.In, error) {
	for _, in := range p.Ins {
		if matches(in.String(), name) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("no midi input matching %q", name)
}

func matches(port, name string) bool {
	return name != "" && strings.Contains(strings.ToLower(port), strings.ToLower(name))
}
