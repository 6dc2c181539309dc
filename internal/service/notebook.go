package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "github.com/journalapp/journal-server/internal/errors"
	"github.com/journalapp/journal-server/internal/id"
	"github.com/journalapp/journal-server/internal/sse"
	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/internal/validation"
	"github.com/journalapp/journal-server/pkg/domain"
)

type noopEmitter struct{}

func (noopEmitter) Emit(sse.Event) {}

func orNoop(events sse.Emitter) sse.Emitter {
	if events == nil {
		return noopEmitter{}
	}
	return events
}

// NotebookService manages a user's notebooks.
type NotebookService struct {
	store     store.Store
	events    sse.Emitter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewNotebookService creates a new NotebookService.
func NewNotebookService(store store.Store, events sse.Emitter, logger *slog.Logger) *NotebookService {
	return &NotebookService{
		store:     store,
		events:    orNoop(events),
		validator: validation.Default(),
		logger:    orDiscard(logger),
	}
}

// CreateNotebookRequest describes a new notebook.
type CreateNotebookRequest struct {
	Title       string     `json:"title" validate:"required,notblank,max=200"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
	CoverColor  string     `json:"cover_color,omitempty" validate:"omitempty,hexcolor"`
	TripStart   *time.Time `json:"trip_start,omitempty"`
	TripEnd     *time.Time `json:"trip_end,omitempty"`
}

// UpdateNotebookRequest is a partial notebook update.
type UpdateNotebookRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	CoverColor  *string    `json:"cover_color,omitempty" validate:"omitempty,hexcolor"`
	TripStart   *time.Time `json:"trip_start,omitempty"`
	TripEnd     *time.Time `json:"trip_end,omitempty"`
}

// List returns the caller's live notebooks, newest first.
func (s *NotebookService) List(ctx context.Context, userID string) ([]*domain.Notebook, error) {
	notebooks, err := s.store.ListNotebooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notebooks: %w", err)
	}
	return notebooks, nil
}

// Get returns one of the caller's notebooks.
func (s *NotebookService) Get(ctx context.Context, userID, notebookID string) (*domain.Notebook, error) {
	return ownedNotebook(ctx, s.store, userID, notebookID, false)
}

// Create adds a notebook for the caller.
func (s *NotebookService) Create(ctx context.Context, userID string, req CreateNotebookRequest) (*domain.Notebook, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := checkTripDates(req.TripStart, req.TripEnd); err != nil {
		return nil, err
	}

	notebookID, err := id.Generate(id.PrefixNotebook)
	if err != nil {
		return nil, fmt.Errorf("generate notebook ID: %w", err)
	}

	nb := &domain.Notebook{
		Syncable:    domain.Syncable{ID: notebookID},
		UserID:      userID,
		Title:       req.Title,
		Slug:        domain.Slugify(req.Title),
		Description: req.Description,
		CoverColor:  req.CoverColor,
		TripStart:   req.TripStart,
		TripEnd:     req.TripEnd,
	}
	nb.InitTimestamps()

	if err := s.store.CreateNotebook(ctx, nb); err != nil {
		return nil, notFoundOr(err, "notebook")
	}

	s.events.Emit(sse.NewNotebookEvent(sse.EventNotebookCreated, userID, nb))
	s.logger.Info("notebook created", "notebook_id", nb.ID, "user_id", userID)
	return nb, nil
}

// Update applies a partial update to one of the caller's notebooks.
func (s *NotebookService) Update(ctx context.Context, userID, notebookID string, req UpdateNotebookRequest) (*domain.Notebook, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	nb, err := ownedNotebook(ctx, s.store, userID, notebookID, false)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		nb.Title = strings.TrimSpace(*req.Title)
		nb.Slug = domain.Slugify(nb.Title)
	}
	if req.Description != nil {
		nb.Description = *req.Description
	}
	if req.CoverColor != nil {
		nb.CoverColor = *req.CoverColor
	}
	if req.TripStart != nil {
		nb.TripStart = req.TripStart
	}
	if req.TripEnd != nil {
		nb.TripEnd = req.TripEnd
	}
	if err := checkTripDates(nb.TripStart, nb.TripEnd); err != nil {
		return nil, err
	}
	nb.Touch()

	if err := s.store.UpdateNotebook(ctx, nb); err != nil {
		return nil, notFoundOr(err, "notebook")
	}

	s.events.Emit(sse.NewNotebookEvent(sse.EventNotebookUpdated, userID, nb))
	return nb, nil
}

// Delete soft-deletes a notebook together with its pages.
func (s *NotebookService) Delete(ctx context.Context, userID, notebookID string) error {
	if _, err := ownedNotebook(ctx, s.store, userID, notebookID, false); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.store.SoftDeleteNotebook(ctx, notebookID, now); err != nil {
		return notFoundOr(err, "notebook")
	}

	s.events.Emit(sse.NewDeletedEvent(sse.EventNotebookDeleted, userID, "", notebookID, now))
	s.logger.Info("notebook deleted", "notebook_id", notebookID, "user_id", userID)
	return nil
}

// Restore brings back a deleted notebook and the pages deleted with it.
func (s *NotebookService) Restore(ctx context.Context, userID, notebookID string) (*domain.Notebook, error) {
	if _, err := ownedNotebook(ctx, s.store, userID, notebookID, true); err != nil {
		return nil, err
	}
	if err := s.store.RestoreNotebook(ctx, notebookID); err != nil {
		return nil, notFoundOr(err, "notebook")
	}

	nb, err := s.store.GetNotebook(ctx, notebookID)
	if err != nil {
		return nil, notFoundOr(err, "notebook")
	}
	s.events.Emit(sse.NewNotebookEvent(sse.EventNotebookUpdated, userID, nb))
	return nb, nil
}

func checkTripDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return domainerrors.ValidationWithDetails("trip_end must not be before trip_start",
			map[string]string{"trip_end": "must not be before trip_start"})
	}
	return nil
}
