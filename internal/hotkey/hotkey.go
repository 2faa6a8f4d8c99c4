// Package hotkey routes global key presses to trigger listeners.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"oneclick/internal/input"
	"oneclick/internal/keys"
)

// ErrKeyInUse is returned when a key already has a listener
var ErrKeyInUse = errors.New("key already has a listener")

// Manager handles trigger key registration and dispatches key presses
// from the global hook to registered listeners in arrival order.
type Manager struct {
	mu        sync.Mutex
	capture   input.Capture
	started   bool
	listeners map[string]*listener
	closing   chan struct{}
	done      chan struct{}
}

type listener struct {
	key  string
	ch   chan struct{}
	ctx  context.Context
	stop func() bool
}

// NewManager creates a new hotkey manager on top of capture
func NewManager(capture input.Capture) *Manager {
	return &Manager{
		capture:   capture,
		listeners: make(map[string]*listener),
	}
}

// Start installs the platform hook. It is called lazily by Listen and
// only installs the hook once.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startLocked()
}

func (m *Manager) startLocked() error {
	if m.started {
		return nil
	}

	events, err := m.capture.Start()
	if err != nil {
		return fmt.Errorf("install key hook: %w", err)
	}

	m.started = true
	m.closing = make(chan struct{})
	m.done = make(chan struct{})
	go m.run(events, m.done)
	log.Println("Hotkey Engine: global hook started.")
	return nil
}

// Listen registers key and returns a channel receiving one value per press.
// Presses are never dropped: dispatch blocks until the listener receives or
// ctx ends. The registration is removed when ctx is done; a key whose
// previous ctx has ended can be registered again right away.
func (m *Manager) Listen(ctx context.Context, key string) (<-chan struct{}, error) {
	name := keys.Normalize(key)
	if !keys.IsValid(name) {
		return nil, fmt.Errorf("unsupported trigger key %q", key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.listeners[name]; ok {
		// a listener whose ctx ended may still be waiting for its AfterFunc
		if existing.ctx.Err() == nil {
			return nil, fmt.Errorf("%s: %w", name, ErrKeyInUse)
		}
		existing.stop()
		delete(m.listeners, name)
	}
	if err := m.startLocked(); err != nil {
		return nil, err
	}

	l := &listener{
		key: name,
		ch:  make(chan struct{}, 64),
		ctx: ctx,
	}
	l.stop = context.AfterFunc(ctx, func() { m.unregister(l) })
	m.listeners[name] = l

	log.Printf("Hotkey Engine: listening for %s", name)
	return l.ch, nil
}

func (m *Manager) unregister(l *listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listeners[l.key] == l {
		delete(m.listeners, l.key)
		log.Printf("Hotkey Engine: stopped listening for %s", l.key)
	}
}

// Listening reports whether key currently has a listener
func (m *Manager) Listening(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.listeners[keys.Normalize(key)]
	return ok
}

// UpdateState feeds one key transition into the manager. Only presses of
// registered keys are dispatched; auto-repeat presses count as presses.
func (m *Manager) UpdateState(key string, isDown bool) {
	if !isDown {
		return
	}

	m.mu.Lock()
	l := m.listeners[keys.Normalize(key)]
	closing := m.closing
	m.mu.Unlock()
	if l == nil {
		return
	}

	select {
	case l.ch <- struct{}{}:
	case <-l.ctx.Done():
	case <-closing:
	}
}

func (m *Manager) run(events <-chan input.KeyEvent, done chan struct{}) {
	defer close(done)
	for ev := range events {
		m.UpdateState(ev.Key, ev.Pressed)
	}
}

// Close removes the platform hook and waits for dispatch to finish
func (m *Manager) Close() error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = false
	done := m.done
	close(m.closing)
	for _, l := range m.listeners {
		l.stop()
	}
	m.listeners = make(map[string]*listener)
	m.mu.Unlock()

	err := m.capture.Stop()
	<-done
	return err
}
