//go:build !cgo

package input

import "fmt"

// Hook is a stub used when the binary is built without cgo
type Hook struct{}

// NewHook creates a new stub hook
func NewHook() *Hook {
	return &Hook{}
}

// Start fails: the global hook requires cgo
func (h *Hook) Start() (<-chan KeyEvent, error) {
	return nil, fmt.Errorf("global key hook not supported in this build (cgo disabled)")
}

// Stop is a no-op
func (h *Hook) Stop() error {
	return nil
}
