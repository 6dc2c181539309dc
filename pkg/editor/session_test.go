package editor

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_OpenResetsHistory(t *testing.T) {
	h := newHarness(t)
	c := h.session.Controller
	c.PointerDown(PointerEvent{X: 50, Y: 40, ElementID: h.a.ID})
	c.PointerUp(PointerEvent{X: 60, Y: 40})
	require.True(t, h.session.History.CanUndo())

	require.NoError(t, h.session.Open(context.Background(), "pg-1"))
	assert.False(t, h.session.History.CanUndo())
	assert.Empty(t, h.session.Store.Selection())
}

func TestSession_OpenOtherPageFlushesPending(t *testing.T) {
	h := newHarness(t)
	other := h.backend.add("pg-2", geom(0, 0, 40, 40), 0)
	require.NoError(t, h.session.Store.Select(h.a.ID, false))
	h.session.Controller.HandleKeyDown(KeyEvent{Key: "ArrowRight"})
	require.Equal(t, 1, h.session.PendingSaves())

	require.NoError(t, h.session.Open(context.Background(), "pg-2"))
	assert.Equal(t, 1, h.backend.updateCount())
	assert.Equal(t, h.a.X+1, h.backend.stored(h.a.ID).X)
	assert.Equal(t, 1, h.session.Store.Count())
	_, ok := h.session.Store.ElementByID(other.ID)
	assert.True(t, ok)
}

func TestSession_FlushPendingBatches(t *testing.T) {
	fb := newFakeBackend()
	a := fb.add("pg-1", geom(10, 10, 50, 50), 0)
	b := fb.add("pg-1", geom(100, 100, 50, 50), 1)
	clock := newManualClock()

	s := NewSession(batchBackend{fb}, Options{Logger: slog.New(slog.DiscardHandler), Clock: clock})
	defer s.Close()
	require.NoError(t, s.Open(context.Background(), "pg-1"))

	for _, id := range []string{a.ID, b.ID} {
		require.NoError(t, s.Store.Select(id, false))
		s.Controller.HandleKeyDown(KeyEvent{Key: "ArrowDown", Shift: true})
	}
	require.Equal(t, 2, s.PendingSaves())

	require.NoError(t, s.FlushPending(context.Background()))
	require.Len(t, fb.batches, 1)
	assert.Len(t, fb.batches[0], 2)
	assert.Zero(t, fb.updateCount())
	assert.Equal(t, 20.0, fb.stored(a.ID).Y)
	assert.Equal(t, 110.0, fb.stored(b.ID).Y)

	clock.Advance(time.Second)
	assert.Len(t, fb.batches, 1)
}

func TestSession_CloseDropsPending(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Store.Select(h.a.ID, false))
	h.session.Controller.HandleKeyDown(KeyEvent{Key: "ArrowRight"})

	h.session.Close()
	h.clock.Advance(time.Second)

	assert.Zero(t, h.backend.updateCount())
	assert.Zero(t, h.session.Store.Count())
	assert.Error(t, h.session.Open(context.Background(), "pg-1"))
}

func TestSession_DebouncedSaveSendsLatestValue(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Store.Select(h.a.ID, false))

	h.session.Controller.HandleKeyDown(KeyEvent{Key: "ArrowRight"})
	_, err := h.session.Store.ApplyLocal(h.a.ID, Patch{X: ptr(77.0)})
	require.NoError(t, err)

	h.clock.Advance(DefaultDebounceWindow)
	assert.Equal(t, 77.0, *h.backend.lastUpdate(t).Patch.X)
}
