package editor

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journalapp/journal-server/pkg/domain"
)

func newTestStore(t *testing.T, b Backend) *Store {
	t.Helper()
	return NewStore(b, Options{Logger: slog.New(slog.DiscardHandler)})
}

func loadedStore(t *testing.T) (*Store, *fakeBackend, []*Element) {
	t.Helper()
	b := newFakeBackend()
	a := b.add("pg-1", geom(10, 20, 100, 50), 0)
	c := b.add("pg-1", geom(40, 60, 80, 80), 1)
	s := newTestStore(t, b)
	require.NoError(t, s.Load(context.Background(), "pg-1"))
	return s, b, []*Element{a, c}
}

func TestStore_LoadOrdersByZIndex(t *testing.T) {
	b := newFakeBackend()
	top := b.add("pg-1", geom(0, 0, 50, 50), 7)
	bottom := b.add("pg-1", geom(0, 0, 50, 50), -2)
	middle := b.add("pg-1", geom(0, 0, 50, 50), 3)
	b.add("pg-other", geom(0, 0, 50, 50), 0)

	s := newTestStore(t, b)
	require.NoError(t, s.Load(context.Background(), "pg-1"))

	var ids []string
	for _, e := range s.Elements() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{bottom.ID, middle.ID, top.ID}, ids)
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, "pg-1", s.PageID())
}

func TestStore_LoadClearsSelection(t *testing.T) {
	s, _, els := loadedStore(t)
	require.NoError(t, s.Select(els[0].ID, false))

	require.NoError(t, s.Load(context.Background(), "pg-1"))
	assert.Empty(t, s.Selection())
}

func TestStore_Create(t *testing.T) {
	s, b, _ := loadedStore(t)

	draft := Draft{
		Kind:     domain.KindEmoji,
		Geometry: geom(5, 5, 40, 40),
		Content:  Content{Emoji: &domain.EmojiContent{Emoji: "🌋"}},
	}
	created, err := s.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 3, s.Count())

	got, ok := s.ElementByID(created.ID)
	require.True(t, ok)
	assert.Equal(t, 2, got.ZIndex)

	b.failCreate = errors.Join(ErrNetwork, errors.New("connection reset"))
	_, err = s.Create(context.Background(), draft)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, 3, s.Count(), "failed creates are never inserted")
}

func TestStore_CreateValidatesBeforeNetwork(t *testing.T) {
	s, b, _ := loadedStore(t)

	tests := []struct {
		name  string
		draft Draft
		field string
	}{
		{
			name:  "too small",
			draft: Draft{Kind: domain.KindEmoji, Geometry: geom(0, 0, 5, 40), Content: Content{Emoji: &domain.EmojiContent{Emoji: "x"}}},
			field: "width",
		},
		{
			name:  "unknown kind",
			draft: Draft{Kind: "video", Geometry: geom(0, 0, 40, 40)},
			field: "kind",
		},
		{
			name:  "content mismatch",
			draft: Draft{Kind: domain.KindText, Geometry: geom(0, 0, 40, 40), Content: Content{Emoji: &domain.EmojiContent{Emoji: "x"}}},
			field: "content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tt.draft)
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
	assert.Zero(t, b.creates)
}

func TestStore_CreateWithoutPage(t *testing.T) {
	s := newTestStore(t, newFakeBackend())
	_, err := s.Create(context.Background(), Draft{})
	assert.ErrorIs(t, err, ErrNoPage)
}

func TestStore_UpdateIsOptimistic(t *testing.T) {
	s, b, els := loadedStore(t)
	b.failUpdate = errors.Join(ErrForbidden, errors.New("403"))

	_, err := s.Update(context.Background(), els[0].ID, Patch{X: ptr(99.0)})
	require.ErrorIs(t, err, ErrForbidden)

	got, _ := s.ElementByID(els[0].ID)
	assert.Equal(t, 99.0, got.X, "failed saves are not rolled back")
	assert.Equal(t, 10.0, b.stored(els[0].ID).X)
}

func TestStore_UpdateReconcilesWithServer(t *testing.T) {
	s, b, els := loadedStore(t)

	saved, err := s.Update(context.Background(), els[0].ID, Patch{Rotation: ptr(-45.0)})
	require.NoError(t, err)
	assert.Equal(t, 315.0, saved.Rotation)
	assert.Equal(t, 315.0, b.stored(els[0].ID).Rotation)
}

func TestStore_UpdateRejectsUndersized(t *testing.T) {
	s, b, els := loadedStore(t)

	_, err := s.Update(context.Background(), els[0].ID, Patch{Height: ptr(4.0)})
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, b.updateCount())

	got, _ := s.ElementByID(els[0].ID)
	assert.Equal(t, 50.0, got.Height)
}

func TestStore_NotFoundDropsElement(t *testing.T) {
	s, b, els := loadedStore(t)
	require.NoError(t, s.Select(els[0].ID, false))

	b.mu.Lock()
	delete(b.elements, els[0].ID)
	b.mu.Unlock()

	_, err := s.Update(context.Background(), els[0].ID, Patch{X: ptr(1.0)})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.Selection())
	_, ok := s.ElementByID(els[0].ID)
	assert.False(t, ok)
}

func TestStore_DeleteKeepsLocalRemovalOnFailure(t *testing.T) {
	s, b, els := loadedStore(t)
	require.NoError(t, s.Select(els[1].ID, false))
	b.failDelete = errors.Join(ErrNetwork, errors.New("timeout"))

	err := s.Delete(context.Background(), els[1].ID)
	require.ErrorIs(t, err, ErrNetwork)

	_, ok := s.ElementByID(els[1].ID)
	assert.False(t, ok)
	assert.Empty(t, s.Selection())
	assert.Equal(t, 1, s.Count())
}

func TestStore_DuplicateDefaultOffset(t *testing.T) {
	s, _, els := loadedStore(t)

	dup, err := s.Duplicate(context.Background(), els[1].ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, els[1].ID, dup.ID)
	assert.Equal(t, els[1].X+20, dup.X)
	assert.Equal(t, els[1].Y+20, dup.Y)
	assert.Equal(t, els[1].Content.Text.Text, dup.Content.Text.Text)
	assert.Equal(t, els[1].Style, dup.Style)

	all := s.Elements()
	assert.Equal(t, dup.ID, all[len(all)-1].ID, "duplicates land on top")
}

func TestStore_DuplicateMissing(t *testing.T) {
	s, b, _ := loadedStore(t)
	_, err := s.Duplicate(context.Background(), "el-nope", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, b.duplicates)
}

func TestStore_Restore(t *testing.T) {
	s, _, els := loadedStore(t)
	require.NoError(t, s.Delete(context.Background(), els[0].ID))

	restored, err := s.Restore(context.Background(), els[0].ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
	assert.Equal(t, els[0].ID, s.Elements()[0].ID)
}

func TestStore_Selection(t *testing.T) {
	s, _, els := loadedStore(t)

	_, ok := s.Primary()
	assert.False(t, ok)

	require.NoError(t, s.Select(els[0].ID, false))
	require.NoError(t, s.Select(els[1].ID, true))
	primary, ok := s.Primary()
	require.True(t, ok)
	assert.Equal(t, els[1].ID, primary)

	require.NoError(t, s.Select(els[0].ID, true))
	assert.Equal(t, []string{els[1].ID, els[0].ID}, s.Selection(), "reselecting moves to primary")

	require.NoError(t, s.Select(els[1].ID, false))
	assert.Equal(t, []string{els[1].ID}, s.Selection())

	assert.ErrorIs(t, s.Select("el-missing", false), ErrNotFound)

	assert.Equal(t, 2, s.SelectAll())
	s.DeselectAll()
	assert.Empty(t, s.Selection())
}

func TestStore_Restack(t *testing.T) {
	s, _, els := loadedStore(t)

	front, err := s.BringToFront(context.Background(), els[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, front.ZIndex)
	assert.Equal(t, els[0].ID, s.Elements()[1].ID)

	back, err := s.SendToBack(context.Background(), els[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, back.ZIndex)
	assert.Equal(t, els[0].ID, s.Elements()[0].ID)
}

func TestStore_ElementCopiesAreIsolated(t *testing.T) {
	s, _, els := loadedStore(t)

	got, _ := s.ElementByID(els[0].ID)
	got.X = 500
	got.Style["color"] = "#fff"

	again, _ := s.ElementByID(els[0].ID)
	assert.Equal(t, 10.0, again.X)
	assert.Equal(t, "#333", again.Style["color"])
}

func TestStore_Events(t *testing.T) {
	s, _, els := loadedStore(t)

	var kinds []EventKind
	unsubscribe := s.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	require.NoError(t, s.Select(els[0].ID, false))
	_, err := s.Update(context.Background(), els[0].ID, Patch{X: ptr(1.0)})
	require.NoError(t, err)
	require.NoError(t, s.Delete(context.Background(), els[0].ID))

	unsubscribe()
	s.SelectAll()

	assert.Equal(t, []EventKind{EventSelect, EventUpdate, EventDelete}, kinds)
}
