package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainerrors "github.com/journalapp/journal-server/internal/errors"
	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/pkg/domain"
)

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// notFoundOr converts store lookups into domain errors naming the entity.
func notFoundOr(err error, entity string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", entity).WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(entity + " already exists").WithCause(err)
	default:
		return fmt.Errorf("%s: %w", entity, err)
	}
}

// ownedNotebook loads a notebook the caller owns. Deleted notebooks are
// only returned when includeDeleted is set.
func ownedNotebook(ctx context.Context, st store.Store, userID, notebookID string, includeDeleted bool) (*domain.Notebook, error) {
	nb, err := st.GetNotebook(ctx, notebookID)
	if err != nil {
		return nil, notFoundOr(err, "notebook")
	}
	if !nb.OwnedBy(userID) {
		return nil, domainerrors.Forbidden("notebook belongs to another user")
	}
	if nb.IsDeleted() && !includeDeleted {
		return nil, domainerrors.NotFound("notebook not found")
	}
	return nb, nil
}

// ownedPage resolves a live page through its notebook to the caller.
func ownedPage(ctx context.Context, st store.Store, userID, pageID string) (*store.Owner, error) {
	owner, err := st.PageOwner(ctx, pageID)
	if err != nil {
		return nil, notFoundOr(err, "page")
	}
	if owner.UserID != userID {
		return nil, domainerrors.Forbidden("page belongs to another user")
	}
	return owner, nil
}

// ownedElement resolves an element (deleted or not) through its page and
// notebook to the caller.
func ownedElement(ctx context.Context, st store.Store, userID, elementID string) (*store.Owner, error) {
	owner, err := st.ElementOwner(ctx, elementID)
	if err != nil {
		return nil, notFoundOr(err, "element")
	}
	if owner.UserID != userID {
		return nil, domainerrors.Forbidden("element belongs to another user")
	}
	return owner, nil
}
