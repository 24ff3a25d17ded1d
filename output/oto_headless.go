//go:build headless

package output

import (
	"errors"

	nerrors "nonomi/errors"
	"nonomi/sequencer"
)

// Oto is unavailable in headless builds; use Null or RenderWAV
type Oto struct{}

func NewOto(sampleRate, blockSize int) (*Oto, error) {
	return nil, nerrors.NewStreamError("open", errors.New("built without audio output (headless)"))
}

func (o *Oto) Start(render sequencer.RenderFunc) error {
	return nerrors.NewStreamError("start", errors.New("headless build"))
}

func (o *Oto) Stop() error {
	return nil
}

func (o *Oto) IsStarted() bool {
	return false
}
