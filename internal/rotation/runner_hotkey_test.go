package rotation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneclick/internal/hotkey"
	"oneclick/internal/input"
)

// keyCapture feeds scripted key events into a real hotkey.Manager
type keyCapture struct {
	once   sync.Once
	events chan input.KeyEvent
}

func newKeyCapture() *keyCapture {
	return &keyCapture{events: make(chan input.KeyEvent, 64)}
}

func (c *keyCapture) Start() (<-chan input.KeyEvent, error) { return c.events, nil }

func (c *keyCapture) Stop() error {
	c.once.Do(func() { close(c.events) })
	return nil
}

func (c *keyCapture) press(key string) {
	c.events <- input.KeyEvent{Key: key, Pressed: true}
	c.events <- input.KeyEvent{Key: key, Pressed: false}
}

func TestRestartOnHotkeyManager(t *testing.T) {
	capture := newKeyCapture()
	m := hotkey.NewManager(capture)
	defer m.Close()

	inj := &fakeInjector{}
	r := NewRunner(m, inj)

	for i := 0; i < 1000; i++ {
		require.NoError(t, r.Start(combo1), "restart %d", i)
		require.NoError(t, r.Stop())
	}

	require.NoError(t, r.Start(combo1))
	defer r.Stop()

	capture.press("f1")
	capture.press("x")
	capture.press("F1")
	assert.Equal(t, []string{"a", "s"}, waitForTaps(t, inj, 2))
	require.Eventually(t, func() bool { return r.State().Cursor == 2 }, time.Second, time.Millisecond)
}
