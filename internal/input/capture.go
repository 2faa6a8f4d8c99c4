//go:build cgo

package input

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	hook "github.com/robotn/gohook"
)

// Hook captures key events through gohook (CGEventTap on macOS,
// low-level keyboard hook on Windows, XRecord on Linux).
type Hook struct {
	mu      sync.Mutex
	running bool
	events  chan KeyEvent
	done    chan struct{}
}

// NewHook creates a new global key hook
func NewHook() *Hook {
	return &Hook{}
}

// Start installs the global hook and returns the event channel.
// The channel is closed after Stop.
func (h *Hook) Start() (<-chan KeyEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil, fmt.Errorf("key hook already running")
	}
	if err := preflight(); err != nil {
		return nil, err
	}

	src := hook.Start()
	h.events = make(chan KeyEvent, 256)
	h.done = make(chan struct{})
	h.running = true

	go h.pump(src, h.events, h.done)

	log.Println("Input: Global key hook started")
	return h.events, nil
}

// Stop removes the hook and waits for the event pump to drain
func (h *Hook) Stop() error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return nil
	}
	h.running = false
	done := h.done
	h.mu.Unlock()

	hook.End()
	<-done
	log.Println("Input: Global key hook stopped")
	return nil
}

func (h *Hook) pump(src chan hook.Event, out chan KeyEvent, done chan struct{}) {
	defer close(done)
	defer close(out)

	for ev := range src {
		var pressed bool
		switch ev.Kind {
		case hook.KeyHold:
			// KeyHold is the physical press; KeyDown only fires for keys that type a character
			pressed = true
		case hook.KeyUp:
			pressed = false
		default:
			continue
		}

		name := KeyName(runtime.GOOS, ev.Rawcode, ev.Keychar)
		if name == "" && runtime.GOOS == "windows" {
			// gohook's rawcode table is keyed by Windows virtual-key codes
			name = hook.RawcodetoKeychar(ev.Rawcode)
		}
		if name == "" {
			continue
		}

		out <- KeyEvent{
			Key:       name,
			Pressed:   pressed,
			Timestamp: time.Now().UnixMilli(),
		}
	}
}

// preflight reports conditions under which the hook cannot be installed
func preflight() error {
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" {
		return fmt.Errorf("no X display available (DISPLAY is not set)")
	}
	return nil
}
