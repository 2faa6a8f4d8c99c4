//go:build !windows

// Package osutils holds small platform queries used before installing the key hook.
package osutils

// IsAdmin is a stub for non-Windows platforms. The key hook there does not
// depend on elevation.
func IsAdmin() bool {
	return false
}
