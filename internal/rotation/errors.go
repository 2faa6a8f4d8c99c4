package rotation

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyActive is returned by Start when a rotation is already running
	ErrAlreadyActive = errors.New("a rotation is already active")

	// ErrNotActive is returned by Stop when no rotation is running
	ErrNotActive = errors.New("no rotation is active")
)

// HookError is returned when the trigger listener could not be registered.
// The runner stays idle.
type HookError struct {
	Trigger string
	Err     error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("register trigger %s: %v", e.Trigger, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// EmissionError records a failed keystroke. The rotation keeps running.
type EmissionError struct {
	Key   string
	Index int
	Err   error
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("emit %s (step %d): %v", e.Key, e.Index, e.Err)
}

func (e *EmissionError) Unwrap() error {
	return e.Err
}
