package errors

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"missing sample", NewMissingSample("C3"), ErrMissingSample},
		{"stream", NewStreamError("open", io.ErrUnexpectedEOF), ErrStream},
		{"config", NewConfigError("bpm", -1.0, "must be positive"), ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			for _, other := range []error{ErrMissingSample, ErrStream, ErrConfig} {
				if other != tt.sentinel && errors.Is(tt.err, other) {
					t.Errorf("%v unexpectedly matches %v", tt.err, other)
				}
			}
		})
	}
}

func TestStreamErrorUnwrap(t *testing.T) {
	err := NewStreamError("start", io.ErrClosedPipe)
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Error("StreamError should unwrap to its cause")
	}

	var se *StreamError
	if !errors.As(error(err), &se) || se.Op != "start" {
		t.Errorf("errors.As failed: %+v", se)
	}
}

func TestMessages(t *testing.T) {
	if msg := NewMissingSample("kick").Error(); !strings.Contains(msg, `"kick"`) {
		t.Errorf("missing sample message = %q", msg)
	}
	if msg := NewConfigError("key", "H", "unknown note").Error(); msg != "invalid key H: unknown note" {
		t.Errorf("config message = %q", msg)
	}
	if msg := NewStreamError("stop", nil).Error(); msg != "audio stream stop failed" {
		t.Errorf("stream message = %q", msg)
	}
}
