// Package input provides global key capture and keystroke synthesis.
package input

// KeyEvent is a key press or release observed by the global hook
type KeyEvent struct {
	Key       string `json:"key"` // key name as reported by the hook, e.g. "f1", "a"
	Pressed   bool   `json:"pressed"`
	Timestamp int64  `json:"ts"` // Unix ms timestamp
}

// Capture defines the interface for capturing key events system-wide
type Capture interface {
	Start() (<-chan KeyEvent, error)
	Stop() error
}

// Injector defines the interface for synthesizing keystrokes
type Injector interface {
	// Tap presses and releases the named key
	Tap(key string) error
}
