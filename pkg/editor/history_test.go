package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drag simulates one interactive move of id to (x, y).
func drag(t *testing.T, h *History, s *Store, id string, x, y float64) {
	t.Helper()
	require.NoError(t, h.Begin(id, OpDrag))
	_, err := s.ApplyLocal(id, Patch{X: &x, Y: &y})
	require.NoError(t, err)
	require.True(t, h.Commit())
}

func TestHistory_UndoRedoRoundTrip(t *testing.T) {
	s, _, els := loadedStore(t)
	h := NewHistory(s, 0)
	id := els[0].ID
	ctx := context.Background()

	moves := [][2]float64{{15, 25}, {30, 40}, {45, 5}, {0, 0}}
	for _, m := range moves {
		drag(t, h, s, id, m[0], m[1])
	}

	for range moves {
		_, err := h.Undo(ctx)
		require.NoError(t, err)
	}
	got, _ := s.ElementByID(id)
	assert.Equal(t, els[0].Geometry, got.Geometry)
	assert.False(t, h.CanUndo())

	for range moves {
		_, err := h.Redo(ctx)
		require.NoError(t, err)
	}
	got, _ = s.ElementByID(id)
	assert.Equal(t, 0.0, got.X)
	assert.Equal(t, 0.0, got.Y)
	assert.False(t, h.CanRedo())
}

func TestHistory_UndoPersists(t *testing.T) {
	s, b, els := loadedStore(t)
	h := NewHistory(s, 0)
	drag(t, h, s, els[0].ID, 70, 80)

	_, err := h.Undo(context.Background())
	require.NoError(t, err)

	call := b.lastUpdate(t)
	assert.Equal(t, els[0].ID, call.ID)
	require.NotNil(t, call.Patch.X)
	assert.Equal(t, 10.0, *call.Patch.X)
	assert.Equal(t, 10.0, b.stored(els[0].ID).X)
}

func TestHistory_NewCommitClearsRedo(t *testing.T) {
	s, _, els := loadedStore(t)
	h := NewHistory(s, 0)

	drag(t, h, s, els[0].ID, 50, 50)
	drag(t, h, s, els[0].ID, 60, 60)
	_, err := h.Undo(context.Background())
	require.NoError(t, err)
	require.True(t, h.CanRedo())

	drag(t, h, s, els[1].ID, 1, 1)
	assert.False(t, h.CanRedo())

	_, err = h.Redo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestHistory_Capacity(t *testing.T) {
	s, _, els := loadedStore(t)
	h := NewHistory(s, 3)
	assert.Equal(t, 3, h.Capacity())

	for i := range 5 {
		drag(t, h, s, els[0].ID, float64(i+1), 0)
	}
	undo, redo := h.Len()
	assert.Equal(t, 3, undo)
	assert.Zero(t, redo)

	for range 3 {
		_, err := h.Undo(context.Background())
		require.NoError(t, err)
	}
	_, err := h.Undo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUndo)

	got, _ := s.ElementByID(els[0].ID)
	assert.Equal(t, 2.0, got.X, "the two oldest snapshots were discarded")
}

func TestHistory_DefaultCapacity(t *testing.T) {
	s, _, _ := loadedStore(t)
	assert.Equal(t, DefaultHistoryCapacity, NewHistory(s, -1).Capacity())
	assert.Equal(t, 50, DefaultHistoryCapacity)
}

func TestHistory_UnchangedGestureIsNotRecorded(t *testing.T) {
	s, _, els := loadedStore(t)
	h := NewHistory(s, 0)

	require.NoError(t, h.Begin(els[0].ID, OpResize))
	assert.Equal(t, StateCapturing, h.State())
	assert.False(t, h.Commit())
	assert.Equal(t, StateIdle, h.State())
	assert.False(t, h.CanUndo())
}

func TestHistory_CancelReturnsSnapshot(t *testing.T) {
	s, _, els := loadedStore(t)
	h := NewHistory(s, 0)

	require.NoError(t, h.Begin(els[0].ID, OpRotate))
	_, err := s.ApplyLocal(els[0].ID, Patch{Rotation: ptr(30.0)})
	require.NoError(t, err)

	entry, ok := h.Cancel()
	require.True(t, ok)
	assert.Equal(t, els[0].Geometry, entry.Geometry)
	assert.Equal(t, OpRotate, entry.Op)
	assert.False(t, h.CanUndo())

	_, ok = h.Cancel()
	assert.False(t, ok)
}

func TestHistory_ElementGone(t *testing.T) {
	s, _, els := loadedStore(t)
	h := NewHistory(s, 0)
	drag(t, h, s, els[0].ID, 90, 90)

	require.NoError(t, s.Delete(context.Background(), els[0].ID))

	_, err := h.Undo(context.Background())
	require.ErrorIs(t, err, ErrElementGone)
	assert.False(t, h.CanUndo(), "the stale entry is dropped")
	assert.False(t, h.CanRedo())
}

func TestHistory_DeleteIsNotUndoable(t *testing.T) {
	s, b, els := loadedStore(t)
	h := NewHistory(s, 0)

	require.NoError(t, s.Delete(context.Background(), els[0].ID))
	assert.False(t, h.CanUndo())

	_, err := h.Undo(context.Background())
	require.ErrorIs(t, err, ErrNothingToUndo)
	_, ok := s.ElementByID(els[0].ID)
	assert.False(t, ok, "undo does not bring deleted elements back")
	assert.Zero(t, b.updateCount())
}

func TestHistory_UndoDuringGesture(t *testing.T) {
	s, _, els := loadedStore(t)
	h := NewHistory(s, 0)
	drag(t, h, s, els[0].ID, 5, 5)

	require.NoError(t, h.Begin(els[0].ID, OpDrag))
	_, err := h.Undo(context.Background())
	assert.ErrorIs(t, err, ErrGestureActive)
	assert.True(t, h.CanUndo())
}

func TestHistory_BeginMissingElement(t *testing.T) {
	s, _, _ := loadedStore(t)
	h := NewHistory(s, 0)
	assert.ErrorIs(t, h.Begin("el-missing", OpDrag), ErrNotFound)
}
