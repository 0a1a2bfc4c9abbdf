package mapsync_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/mapsync"
	"github.com/samirrijal/crewmap/internal/core/ports"
)

func TestReconcile_MinimalDiff(t *testing.T) {
	ctx := context.Background()
	m := newFakeMap(true)
	mgr := mapsync.NewMarkerManager(m)

	mgr.Reconcile(ctx, features("1", "2"))
	h1, _ := mgr.Handle("1")
	h2, _ := mgr.Handle("2")
	require.Len(t, m.created, 2)

	mgr.Reconcile(ctx, features("2", "3"))

	require.Len(t, m.destroyed, 1)
	assert.Same(t, h1.(*fakeHandle), m.destroyed[0])
	require.Len(t, m.created, 3)
	h3, ok := mgr.Handle("3")
	require.True(t, ok)
	assert.Same(t, m.created[2], h3.(*fakeHandle))

	h2again, ok := mgr.Handle("2")
	require.True(t, ok)
	assert.Same(t, h2.(*fakeHandle), h2again.(*fakeHandle))
	_, ok = mgr.Handle("1")
	assert.False(t, ok)
	assert.Equal(t, 2, mgr.Len())
}

func TestReconcile_NotReadyIsNoop(t *testing.T) {
	ctx := context.Background()
	m := newFakeMap(false)
	mgr := mapsync.NewMarkerManager(m)

	mgr.Reconcile(ctx, features("1", "2"))
	assert.Zero(t, mgr.Len())
	assert.Empty(t, m.created)

	m.setReady(true)
	mgr.Reconcile(ctx, features("1", "2"))
	assert.Equal(t, 2, mgr.Len())
}

func TestReconcile_LiveCountTracksDistinctIDs(t *testing.T) {
	ctx := context.Background()
	m := newFakeMap(true)
	mgr := mapsync.NewMarkerManager(m)
	r := rand.New(rand.NewSource(42))
	pool := []string{"a", "b", "c", "d", "e", "f"}

	for i := 0; i < 100; i++ {
		var ids []string
		distinct := map[string]bool{}
		for j := r.Intn(8); j > 0; j-- {
			id := pool[r.Intn(len(pool))]
			ids = append(ids, id)
			distinct[id] = true
		}
		mgr.Reconcile(ctx, features(ids...))

		require.Equal(t, len(distinct), mgr.Len(), "round %d", i)
		require.Equal(t, len(distinct), m.liveCount(), "round %d: capability sees a different live set", i)
	}
}

func TestReconcile_FailedCreateRetriedNextTime(t *testing.T) {
	ctx := context.Background()
	m := newFakeMap(true)
	m.failNext = 1
	mgr := mapsync.NewMarkerManager(m)

	mgr.Reconcile(ctx, features("1", "2"))
	assert.Equal(t, 1, mgr.Len())
	_, ok := mgr.Handle("1")
	assert.False(t, ok)

	mgr.Reconcile(ctx, features("1", "2"))
	assert.Equal(t, 2, mgr.Len())
}

func TestReconcile_FailedDestroyForgetsHandle(t *testing.T) {
	ctx := context.Background()
	m := newFakeMap(true)
	mgr := mapsync.NewMarkerManager(m)
	mgr.Reconcile(ctx, features("1"))

	m.destroyErr = errors.New("map: gone")
	mgr.Reconcile(ctx, nil)

	assert.Zero(t, mgr.Len())
	assert.Len(t, m.destroyed, 1)
}

func TestReconcile_FillsContentOnCreate(t *testing.T) {
	ctx := context.Background()
	m := newFakeMap(true)
	mgr := mapsync.NewMarkerManager(m)

	mgr.Reconcile(ctx, domain.FeatureCollection{
		{ID: "1", Kind: domain.FeatureKindEvent, Title: "Meetup", Category: "social"},
	})

	h, _ := mgr.Handle("1")
	c, ok := m.lastPopup(h.MarkerID())
	require.True(t, ok)
	assert.Equal(t, ports.MarkerContent{Kind: domain.FeatureKindEvent, Title: "Meetup", Category: "social"}, c)
}

func TestRestyle_OnlyChangedMarkers(t *testing.T) {
	ctx := context.Background()
	m := newFakeMap(true)
	mgr := mapsync.NewMarkerManager(m)
	fc := features("1", "2", "3")
	mgr.Reconcile(ctx, fc)

	h1, _ := mgr.Handle("1")
	h2, _ := mgr.Handle("2")
	h3, _ := mgr.Handle("3")

	sel := fc[1]
	mgr.Restyle(ctx, domain.SelectionState{HoveredID: "1", Selected: &sel})

	assert.Len(t, m.popups[h1.MarkerID()], 2)
	assert.Len(t, m.popups[h2.MarkerID()], 2)
	assert.Len(t, m.popups[h3.MarkerID()], 1, "unaffected marker must not be refilled")

	c1, _ := m.lastPopup(h1.MarkerID())
	c2, _ := m.lastPopup(h2.MarkerID())
	assert.True(t, c1.Hovered)
	assert.False(t, c1.Selected)
	assert.True(t, c2.Selected)

	// Same state again: nothing to push.
	mgr.Restyle(ctx, domain.SelectionState{HoveredID: "1", Selected: &sel})
	assert.Len(t, m.popups[h1.MarkerID()], 2)
}

func TestTeardown_DestroysEverything(t *testing.T) {
	ctx := context.Background()
	m := newFakeMap(true)
	mgr := mapsync.NewMarkerManager(m)
	mgr.Reconcile(ctx, features("1", "2", "3"))

	mgr.Teardown(ctx)

	assert.Zero(t, mgr.Len())
	assert.Zero(t, m.liveCount())
	assert.Len(t, m.destroyed, 3)
}
