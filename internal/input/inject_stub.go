//go:build !cgo

package input

import (
	"fmt"
)

// Stub implementation for builds without cgo

// RobotInjector represents a stub keystroke injector
type RobotInjector struct{}

// NewInjector creates a new stub injector
func NewInjector() *RobotInjector {
	return &RobotInjector{}
}

// Tap presses and releases key (stub)
func (i *RobotInjector) Tap(key string) error {
	return fmt.Errorf("keystroke injection not supported in this build (cgo disabled)")
}
