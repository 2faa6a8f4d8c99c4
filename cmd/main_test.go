package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneclick/internal/config"
	"oneclick/internal/console"
	"oneclick/internal/rotation"
	"oneclick/internal/session"
)

type idleListener struct{}

func (idleListener) Listen(ctx context.Context, key string) (<-chan struct{}, error) {
	return make(chan struct{}), nil
}

type noopInjector struct{}

func (noopInjector) Tap(string) error { return nil }

func TestTraySelectionFollowsNames(t *testing.T) {
	store, err := config.NewStore(t.TempDir())
	require.NoError(t, err)
	for _, r := range []config.Rotation{
		{Name: "first", Trigger: "f1", Sequence: []string{"a"}},
		{Name: "second", Trigger: "f2", Sequence: []string{"b"}},
	} {
		_, err := store.Create(r)
		require.NoError(t, err)
	}

	sess := session.New(store, rotation.NewRunner(idleListener{}, noopInjector{}), console.New())
	defer sess.Shutdown()

	// menu built at startup: item 10 is "first", item 11 is "second"
	items := map[int]string{10: "first", 11: "second"}
	selectSecond := selectByName(sess, "second")

	// deleting "first" shifts "second" to index 0
	require.NoError(t, sess.Delete(0))

	selectSecond()
	st := sess.Status()
	assert.Equal(t, "second", st.SelectedName)
	assert.Equal(t, 0, st.Selected)
	assert.Equal(t, map[int]bool{10: false, 11: true}, checkedItems(items, st))

	// a removed rotation leaves the selection unchanged
	selectByName(sess, "first")()
	assert.Equal(t, "second", sess.Status().SelectedName)

	assert.Equal(t, map[int]bool{10: false, 11: false}, checkedItems(items, session.Status{Selected: -1}))
}
