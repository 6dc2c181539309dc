package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/journalapp/journal-server/internal/id"
	"github.com/journalapp/journal-server/internal/sse"
	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/internal/validation"
	"github.com/journalapp/journal-server/pkg/domain"
)

// PageService manages the pages of a notebook.
type PageService struct {
	store     store.Store
	events    sse.Emitter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewPageService creates a new PageService.
func NewPageService(store store.Store, events sse.Emitter, logger *slog.Logger) *PageService {
	return &PageService{
		store:     store,
		events:    orNoop(events),
		validator: validation.Default(),
		logger:    orDiscard(logger),
	}
}

// CreatePageRequest describes a new page. PageNumber defaults to one past the last page.
type CreatePageRequest struct {
	Title      string `json:"title,omitempty" validate:"max=200"`
	PageNumber *int   `json:"page_number,omitempty" validate:"omitempty,gte=1"`
	Background string `json:"background,omitempty" validate:"max=200"`
}

// UpdatePageRequest is a partial page update.
type UpdatePageRequest struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,max=200"`
	PageNumber *int    `json:"page_number,omitempty" validate:"omitempty,gte=1"`
	Background *string `json:"background,omitempty" validate:"omitempty,max=200"`
}

// List returns the live pages of a notebook in page order.
func (s *PageService) List(ctx context.Context, userID, notebookID string) ([]*domain.Page, error) {
	if _, err := ownedNotebook(ctx, s.store, userID, notebookID, false); err != nil {
		return nil, err
	}
	pages, err := s.store.ListPages(ctx, notebookID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

// Get returns a live page owned by the caller.
func (s *PageService) Get(ctx context.Context, userID, pageID string) (*domain.Page, error) {
	if _, err := ownedPage(ctx, s.store, userID, pageID); err != nil {
		return nil, err
	}
	page, err := s.store.GetPage(ctx, pageID)
	if err != nil {
		return nil, notFoundOr(err, "page")
	}
	return page, nil
}

// Create appends a page to a notebook.
func (s *PageService) Create(ctx context.Context, userID, notebookID string, req CreatePageRequest) (*domain.Page, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := ownedNotebook(ctx, s.store, userID, notebookID, false); err != nil {
		return nil, err
	}

	number := 0
	if req.PageNumber != nil {
		number = *req.PageNumber
	} else {
		next, err := s.store.NextPageNumber(ctx, notebookID)
		if err != nil {
			return nil, fmt.Errorf("next page number: %w", err)
		}
		number = next
	}

	pageID, err := id.Generate(id.PrefixPage)
	if err != nil {
		return nil, fmt.Errorf("generate page ID: %w", err)
	}

	page := &domain.Page{
		Syncable:   domain.Syncable{ID: pageID},
		NotebookID: notebookID,
		Title:      req.Title,
		PageNumber: number,
		Background: req.Background,
	}
	page.InitTimestamps()

	if err := s.store.CreatePage(ctx, page); err != nil {
		return nil, notFoundOr(err, "page")
	}

	s.events.Emit(sse.NewPageEvent(sse.EventPageCreated, userID, page))
	return page, nil
}

// Update applies a partial update to a page.
func (s *PageService) Update(ctx context.Context, userID, pageID string, req UpdatePageRequest) (*domain.Page, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	page, err := s.Get(ctx, userID, pageID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		page.Title = *req.Title
	}
	if req.PageNumber != nil {
		page.PageNumber = *req.PageNumber
	}
	if req.Background != nil {
		page.Background = *req.Background
	}
	page.Touch()

	if err := s.store.UpdatePage(ctx, page); err != nil {
		return nil, notFoundOr(err, "page")
	}

	s.events.Emit(sse.NewPageEvent(sse.EventPageUpdated, userID, page))
	return page, nil
}

// Delete soft-deletes a page. Its elements stay in place for a later restore.
func (s *PageService) Delete(ctx context.Context, userID, pageID string) error {
	if _, err := ownedPage(ctx, s.store, userID, pageID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.store.SoftDeletePage(ctx, pageID, now); err != nil {
		return notFoundOr(err, "page")
	}

	s.events.Emit(sse.NewDeletedEvent(sse.EventPageDeleted, userID, pageID, pageID, now))
	return nil
}

// Restore brings back a deleted page. Its notebook must be live.
func (s *PageService) Restore(ctx context.Context, userID, pageID string) (*domain.Page, error) {
	page, err := s.store.GetPage(ctx, pageID)
	if err != nil {
		return nil, notFoundOr(err, "page")
	}
	if _, err := ownedNotebook(ctx, s.store, userID, page.NotebookID, false); err != nil {
		return nil, err
	}

	if err := s.store.RestorePage(ctx, pageID); err != nil {
		return nil, notFoundOr(err, "page")
	}
	page.Restore()

	s.events.Emit(sse.NewPageEvent(sse.EventPageUpdated, userID, page))
	return page, nil
}
