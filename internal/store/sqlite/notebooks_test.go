package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/pkg/domain"
)

func makeTestNotebook(id, userID, title string) *domain.Notebook {
	nb := &domain.Notebook{
		Syncable:   domain.Syncable{ID: id},
		UserID:     userID,
		Title:      title,
		Slug:       "slug-" + id,
		CoverColor: "#aabbcc",
	}
	nb.InitTimestamps()
	return nb
}

func makeTestPage(id, notebookID string, number int) *domain.Page {
	p := &domain.Page{
		Syncable:   domain.Syncable{ID: id},
		NotebookID: notebookID,
		Title:      "Day " + id,
		PageNumber: number,
		Background: "dots",
	}
	p.InitTimestamps()
	return p
}

func TestCreateAndGetNotebook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeTestUser("usr-1", "a@example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	nb := makeTestNotebook("nb-1", "usr-1", "Japan")
	nb.TripStart = &start
	if err := s.CreateNotebook(ctx, nb); err != nil {
		t.Fatalf("CreateNotebook: %v", err)
	}

	got, err := s.GetNotebook(ctx, "nb-1")
	if err != nil {
		t.Fatalf("GetNotebook: %v", err)
	}
	if got.Title != "Japan" || got.UserID != "usr-1" {
		t.Errorf("unexpected notebook %+v", got)
	}
	if got.TripStart == nil || !got.TripStart.Equal(start) {
		t.Errorf("TripStart: got %v", got.TripStart)
	}
	if got.TripEnd != nil {
		t.Errorf("TripEnd should be nil")
	}
	if got.PageCount != 0 {
		t.Errorf("PageCount: got %d", got.PageCount)
	}
}

func TestListNotebooks_ExcludesDeletedAndCountsPages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, nbID, _ := seedPage(t, s)

	other := makeTestNotebook("nb-2", "usr-1", "Gone")
	if err := s.CreateNotebook(ctx, other); err != nil {
		t.Fatalf("CreateNotebook: %v", err)
	}
	if err := s.SoftDeleteNotebook(ctx, "nb-2", time.Now()); err != nil {
		t.Fatalf("SoftDeleteNotebook: %v", err)
	}

	list, err := s.ListNotebooks(ctx, "usr-1")
	if err != nil {
		t.Fatalf("ListNotebooks: %v", err)
	}
	if len(list) != 1 || list[0].ID != nbID {
		t.Fatalf("expected only %s, got %d notebooks", nbID, len(list))
	}
	if list[0].PageCount != 1 {
		t.Errorf("PageCount: got %d, want 1", list[0].PageCount)
	}
}

func TestSoftDeleteNotebook_CascadesAndRestores(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, nbID, pageID := seedPage(t, s)

	// A page deleted earlier must stay deleted after the notebook is restored.
	early := makeTestPage("pg-early", nbID, 2)
	if err := s.CreatePage(ctx, early); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if err := s.SoftDeletePage(ctx, early.ID, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("SoftDeletePage: %v", err)
	}

	if err := s.SoftDeleteNotebook(ctx, nbID, time.Now()); err != nil {
		t.Fatalf("SoftDeleteNotebook: %v", err)
	}
	if err := s.SoftDeleteNotebook(ctx, nbID, time.Now()); !errors.Is(err, store.ErrNotebookNotFound) {
		t.Errorf("second delete: expected ErrNotebookNotFound, got %v", err)
	}

	page, err := s.GetPage(ctx, pageID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if !page.IsDeleted() {
		t.Errorf("page should be deleted with its notebook")
	}
	if _, err := s.PageOwner(ctx, pageID); !errors.Is(err, store.ErrPageNotFound) {
		t.Errorf("PageOwner on deleted notebook: got %v", err)
	}

	if err := s.RestoreNotebook(ctx, nbID); err != nil {
		t.Fatalf("RestoreNotebook: %v", err)
	}
	pages, err := s.ListPages(ctx, nbID)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(pages) != 1 || pages[0].ID != pageID {
		t.Errorf("expected only %s restored, got %d pages", pageID, len(pages))
	}
}

func TestUpdateNotebook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, nbID, _ := seedPage(t, s)

	nb, err := s.GetNotebook(ctx, nbID)
	if err != nil {
		t.Fatalf("GetNotebook: %v", err)
	}
	nb.Title = "Porto"
	nb.Description = "Second leg"
	nb.Touch()
	if err := s.UpdateNotebook(ctx, nb); err != nil {
		t.Fatalf("UpdateNotebook: %v", err)
	}

	got, err := s.GetNotebook(ctx, nbID)
	if err != nil {
		t.Fatalf("GetNotebook: %v", err)
	}
	if got.Title != "Porto" || got.Description != "Second leg" {
		t.Errorf("update not persisted: %+v", got)
	}

	missing := makeTestNotebook("nb-x", "usr-1", "x")
	if err := s.UpdateNotebook(ctx, missing); !errors.Is(err, store.ErrNotebookNotFound) {
		t.Errorf("expected ErrNotebookNotFound, got %v", err)
	}
}
