package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure classes
var (
	ErrMissingSample = errors.New("sample not found")
	ErrStream        = errors.New("audio stream failure")
	ErrConfig        = errors.New("invalid configuration")
)

// MissingSampleError is returned by sample lookups for unknown note or instrument names.
// It is never fatal: the voice that wanted the sample is simply not spawned.
type MissingSampleError struct {
	Name string
}

func (e *MissingSampleError) Error() string {
	return fmt.Sprintf("sample %q not found", e.Name)
}

func (e *MissingSampleError) Is(target error) bool {
	return target == ErrMissingSample
}

// StreamError represents a failure of the audio device
type StreamError struct {
	Op    string // "open", "start", "stop", "write"
	Cause error
}

func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("audio stream %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("audio stream %s failed", e.Op)
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

func (e *StreamError) Is(target error) bool {
	return target == ErrStream
}

// ConfigError rejects a bad parameter at a control entry point
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewMissingSample creates a MissingSampleError
func NewMissingSample(name string) *MissingSampleError {
	return &MissingSampleError{Name: name}
}

// NewStreamError creates a StreamError
func NewStreamError(op string, cause error) *StreamError {
	return &StreamError{Op: op, Cause: cause}
}

// NewConfigError creates a ConfigError
func NewConfigError(field string, value any, reason string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}
