//go:build cgo

package input

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"oneclick/internal/keys"
)

// RobotInjector synthesizes keystrokes through robotgo
type RobotInjector struct{}

// NewInjector creates a new keystroke injector
func NewInjector() *RobotInjector {
	return &RobotInjector{}
}

// Tap presses and releases key
func (i *RobotInjector) Tap(key string) error {
	if err := robotgo.KeyTap(keys.Normalize(key)); err != nil {
		return fmt.Errorf("tap %q: %w", key, err)
	}
	return nil
}
