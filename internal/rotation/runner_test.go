package rotation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneclick/internal/config"
)

// fakeListener hands out one trigger channel per Listen call
type fakeListener struct {
	mu       sync.Mutex
	err      error
	triggers chan struct{}
	ctx      context.Context
	calls    int
}

func (f *fakeListener) Listen(ctx context.Context, key string) (<-chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.triggers = make(chan struct{}, 64)
	f.ctx = ctx
	return f.triggers, nil
}

func (f *fakeListener) press(t *testing.T, n int) {
	t.Helper()
	f.mu.Lock()
	ch := f.triggers
	f.mu.Unlock()
	for i := 0; i < n; i++ {
		ch <- struct{}{}
	}
}

// fakeInjector records every tapped key
type fakeInjector struct {
	mu     sync.Mutex
	tapped []string
	failOn map[string]bool
}

func (f *fakeInjector) Tap(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tapped = append(f.tapped, key)
	if f.failOn[key] {
		return errors.New("synthetic failure")
	}
	return nil
}

func (f *fakeInjector) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tapped...)
}

func (f *fakeInjector) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tapped = nil
}

func waitForTaps(t *testing.T, inj *fakeInjector, n int) []string {
	t.Helper()
	require.Eventually(t, func() bool { return len(inj.keys()) >= n }, 2*time.Second, time.Millisecond)
	return inj.keys()
}

var combo1 = config.Rotation{Name: "combo1", Trigger: "f1", Sequence: []string{"a", "s", "d"}}

func newTestRunner() (*Runner, *fakeListener, *fakeInjector) {
	l := &fakeListener{}
	inj := &fakeInjector{}
	return NewRunner(l, inj), l, inj
}

func TestCombo1Example(t *testing.T) {
	r, l, inj := newTestRunner()
	require.NoError(t, r.Start(combo1))
	defer r.Stop()

	l.press(t, 4)
	assert.Equal(t, []string{"a", "s", "d", "a"}, waitForTaps(t, inj, 4))
}

func TestRoundRobinInvariant(t *testing.T) {
	seq := []string{"1", "2", "3", "4", "5"}
	for _, k := range []int{1, 4, 5, 6, 11, 23} {
		r, l, inj := newTestRunner()
		require.NoError(t, r.Start(config.Rotation{Name: "n", Trigger: "f2", Sequence: seq}))

		l.press(t, k)
		got := waitForTaps(t, inj, k)
		require.NoError(t, r.Stop())

		want := make([]string, k)
		for i := range want {
			want[i] = seq[i%len(seq)]
		}
		assert.Equal(t, want, got, "k=%d", k)
	}
}

func TestCursorWrapsAndState(t *testing.T) {
	r, l, inj := newTestRunner()
	require.NoError(t, r.Start(combo1))
	defer r.Stop()

	st := r.State()
	assert.True(t, st.Running)
	assert.Equal(t, 0, st.Cursor)
	assert.NotEmpty(t, st.RunID)
	assert.Equal(t, "combo1", st.Rotation.Name)

	l.press(t, 2)
	waitForTaps(t, inj, 2)
	require.Eventually(t, func() bool { return r.State().Emitted == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, 2, r.State().Cursor)

	l.press(t, 1)
	require.Eventually(t, func() bool { return r.State().Emitted == 3 }, time.Second, time.Millisecond)
	assert.Equal(t, 0, r.State().Cursor)
}

func TestRestartResetsCursor(t *testing.T) {
	r, l, inj := newTestRunner()
	require.NoError(t, r.Start(combo1))
	l.press(t, 2)
	waitForTaps(t, inj, 2)
	require.NoError(t, r.Stop())

	st := r.State()
	assert.False(t, st.Running)
	assert.Equal(t, 0, st.Cursor)
	assert.Empty(t, st.Rotation.Name)

	inj.reset()
	require.NoError(t, r.Start(combo1))
	defer r.Stop()
	l.press(t, 1)
	assert.Equal(t, []string{"a"}, waitForTaps(t, inj, 1))
}

func TestStopWhenIdle(t *testing.T) {
	r, _, _ := newTestRunner()
	assert.ErrorIs(t, r.Stop(), ErrNotActive)

	require.NoError(t, r.Start(combo1))
	require.NoError(t, r.Stop())
	assert.ErrorIs(t, r.Stop(), ErrNotActive)
}

func TestStartWhenActiveIsRejected(t *testing.T) {
	r, l, inj := newTestRunner()
	require.NoError(t, r.Start(combo1))
	defer r.Stop()

	other := config.Rotation{Name: "other", Trigger: "f2", Sequence: []string{"x"}}
	assert.ErrorIs(t, r.Start(other), ErrAlreadyActive)
	assert.Equal(t, 1, l.calls)

	// the running rotation is untouched
	l.press(t, 1)
	assert.Equal(t, []string{"a"}, waitForTaps(t, inj, 1))
	assert.Equal(t, "combo1", r.State().Rotation.Name)
}

func TestHookFailureLeavesIdle(t *testing.T) {
	r, l, _ := newTestRunner()
	l.err = errors.New("permission denied")

	err := r.Start(combo1)
	var he *HookError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "f1", he.Trigger)
	assert.ErrorIs(t, err, l.err)
	assert.False(t, r.Active())
	assert.ErrorIs(t, r.Stop(), ErrNotActive)
}

func TestInvalidRotationIsRejected(t *testing.T) {
	r, l, _ := newTestRunner()

	err := r.Start(config.Rotation{Name: "empty", Trigger: "f1"})
	var ve *config.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, l.calls)
	assert.False(t, r.Active())
}

func TestEmissionFailureStillAdvances(t *testing.T) {
	r, l, inj := newTestRunner()
	inj.failOn = map[string]bool{"s": true}

	var mu sync.Mutex
	var emissions []Emission
	r.SetOnEmit(func(e Emission) {
		mu.Lock()
		emissions = append(emissions, e)
		mu.Unlock()
	})

	require.NoError(t, r.Start(combo1))
	defer r.Stop()

	l.press(t, 4)
	assert.Equal(t, []string{"a", "s", "d", "a"}, waitForTaps(t, inj, 4))
	assert.True(t, r.Active())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(emissions) == 4
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NoError(t, emissions[0].Err)
	var ee *EmissionError
	require.ErrorAs(t, emissions[1].Err, &ee)
	assert.Equal(t, "s", ee.Key)
	assert.Equal(t, 1, ee.Index)
	assert.NoError(t, emissions[2].Err)
	assert.Equal(t, 0, emissions[3].Index)
}

func TestStopCancelsListenerAndJoins(t *testing.T) {
	r, l, _ := newTestRunner()
	require.NoError(t, r.Start(combo1))

	l.mu.Lock()
	ctx := l.ctx
	l.mu.Unlock()

	require.NoError(t, r.Stop())
	select {
	case <-ctx.Done():
	default:
		t.Fatal("listener context not cancelled")
	}
}

func TestNoEmissionAfterStop(t *testing.T) {
	r, l, inj := newTestRunner()
	require.NoError(t, r.Start(combo1))
	l.press(t, 1)
	waitForTaps(t, inj, 1)
	require.NoError(t, r.Stop())

	// presses queued after Stop are never replayed
	l.press(t, 3)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, inj.keys(), 1)
}

func TestConcurrentStopAndTriggers(t *testing.T) {
	r, l, inj := newTestRunner()
	require.NoError(t, r.Start(combo1))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.press(t, 50)
	}()
	wg.Wait()
	require.NoError(t, r.Stop())

	got := inj.keys()
	for i, k := range got {
		assert.Equal(t, combo1.Sequence[i%3], k)
	}
	st := r.State()
	assert.False(t, st.Running)
	assert.Equal(t, 0, st.Cursor)
}
