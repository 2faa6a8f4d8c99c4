//go:build !windows

package autostart

func enableWindows(string) error { return ErrUnsupported }

func disableWindows() error { return ErrUnsupported }

func isEnabledWindows() bool { return false }
