// Package console keeps the timestamped activity log shown in the UI.
package console

import (
	"fmt"
	"log"
	"sync"

	"github.com/jonboulle/clockwork"
)

// DefaultCapacity is the number of lines kept for late subscribers
const DefaultCapacity = 500

// Console is a bounded, timestamped log with live subscribers
type Console struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	capacity int
	lines    []string
	subs     map[chan string]struct{}
}

// New creates a console using the wall clock
func New() *Console {
	return NewWithClock(clockwork.NewRealClock(), DefaultCapacity)
}

// NewWithClock creates a console with an explicit clock and capacity
func NewWithClock(clock clockwork.Clock, capacity int) *Console {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Console{
		clock:    clock,
		capacity: capacity,
		subs:     make(map[chan string]struct{}),
	}
}

// Logf formats a message, stamps it "[HH:MM:SS]", records it and sends it
// to every subscriber. Slow subscribers miss lines rather than block.
func (c *Console) Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("Console: %s", msg)

	line := fmt.Sprintf("[%s] %s", c.clock.Now().Format("15:04:05"), msg)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = append(c.lines, line)
	if over := len(c.lines) - c.capacity; over > 0 {
		c.lines = append(c.lines[:0:0], c.lines[over:]...)
	}

	for ch := range c.subs {
		select {
		case ch <- line:
		default:
		}
	}
}

// Lines returns the buffered lines, oldest first
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

// Subscribe returns the current backlog and a channel of new lines.
// The returned function unsubscribes and closes the channel.
func (c *Console) Subscribe() ([]string, <-chan string, func()) {
	ch := make(chan string, 64)

	c.mu.Lock()
	backlog := append([]string(nil), c.lines...)
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			close(ch)
			c.mu.Unlock()
		})
	}
	return backlog, ch, cancel
}
