package console

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogfTimestamps(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 9, 4, 7, 0, time.UTC))
	c := NewWithClock(clock, 10)

	c.Logf("Created new configuration: %s", "combo1")
	clock.Advance(61 * time.Second)
	c.Logf("Stopped rotation")

	assert.Equal(t, []string{
		"[09:04:07] Created new configuration: combo1",
		"[09:05:08] Stopped rotation",
	}, c.Lines())
}

func TestCapacityDropsOldest(t *testing.T) {
	c := NewWithClock(clockwork.NewFakeClock(), 3)
	for i := 0; i < 5; i++ {
		c.Logf("line %d", i)
	}

	lines := c.Lines()
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "line 2")
	assert.Contains(t, lines[2], "line 4")
}

func TestSubscribeBacklogAndLive(t *testing.T) {
	c := NewWithClock(clockwork.NewFakeClock(), 10)
	c.Logf("before")

	backlog, ch, cancel := c.Subscribe()
	require.Len(t, backlog, 1)
	assert.Contains(t, backlog[0], "before")

	c.Logf("after")
	select {
	case line := <-ch:
		assert.Contains(t, line, "after")
	case <-time.After(time.Second):
		t.Fatal("no live line")
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	// logging after unsubscribe must not panic
	c.Logf("later")
}
