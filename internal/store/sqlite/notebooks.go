package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/pkg/domain"
)

// notebookColumns must match the scan order in scanNotebook. The page count
// is computed so list views need no second query.
const notebookColumns = `n.id, n.created_at, n.updated_at, n.deleted_at, n.user_id, n.title, n.slug,
	n.description, n.cover_color, n.trip_start, n.trip_end,
	(SELECT COUNT(*) FROM pages p WHERE p.notebook_id = n.id AND p.deleted_at IS NULL)`

func scanNotebook(sc scanner) (*domain.Notebook, error) {
	var (
		nb        domain.Notebook
		createdAt string
		updatedAt string
		deletedAt sql.NullString
		tripStart sql.NullString
		tripEnd   sql.NullString
	)

	err := sc.Scan(&nb.ID, &createdAt, &updatedAt, &deletedAt, &nb.UserID, &nb.Title, &nb.Slug,
		&nb.Description, &nb.CoverColor, &tripStart, &tripEnd, &nb.PageCount)
	if err != nil {
		return nil, err
	}

	if nb.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if nb.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if nb.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}
	if nb.TripStart, err = parseNullableTime(tripStart); err != nil {
		return nil, err
	}
	if nb.TripEnd, err = parseNullableTime(tripEnd); err != nil {
		return nil, err
	}
	return &nb, nil
}

// CreateNotebook inserts a notebook.
func (s *Store) CreateNotebook(ctx context.Context, nb *domain.Notebook) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notebooks (id, created_at, updated_at, deleted_at, user_id, title, slug, description, cover_color, trip_start, trip_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nb.ID,
		formatTime(nb.CreatedAt),
		formatTime(nb.UpdatedAt),
		nullTimeString(nb.DeletedAt),
		nb.UserID,
		nb.Title,
		nb.Slug,
		nb.Description,
		nb.CoverColor,
		nullTimeString(nb.TripStart),
		nullTimeString(nb.TripEnd),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetNotebook retrieves a notebook by ID, including soft-deleted ones.
func (s *Store) GetNotebook(ctx context.Context, id string) (*domain.Notebook, error) {
	nb, err := scanNotebook(s.db.QueryRowContext(ctx, `SELECT `+notebookColumns+` FROM notebooks n WHERE n.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotebookNotFound
	}
	return nb, err
}

// ListNotebooks returns a user's live notebooks, most recently updated first.
func (s *Store) ListNotebooks(ctx context.Context, userID string) ([]*domain.Notebook, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notebookColumns+` FROM notebooks n
		WHERE n.user_id = ? AND n.deleted_at IS NULL
		ORDER BY n.updated_at DESC, n.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNotebook)
}

// UpdateNotebook rewrites the mutable notebook columns.
func (s *Store) UpdateNotebook(ctx context.Context, nb *domain.Notebook) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notebooks SET updated_at = ?, title = ?, slug = ?, description = ?, cover_color = ?, trip_start = ?, trip_end = ?
		WHERE id = ?`,
		formatTime(nb.UpdatedAt),
		nb.Title,
		nb.Slug,
		nb.Description,
		nb.CoverColor,
		nullTimeString(nb.TripStart),
		nullTimeString(nb.TripEnd),
		nb.ID,
	)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrNotebookNotFound)
}

// SoftDeleteNotebook marks the notebook and its live pages deleted at the same instant,
// so RestoreNotebook can bring back exactly the pages removed with it.
func (s *Store) SoftDeleteNotebook(ctx context.Context, id string, at time.Time) error {
	ts := formatTime(at)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE notebooks SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, ts, ts, id)
		if err != nil {
			return err
		}
		if err := expectOne(result, store.ErrNotebookNotFound); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE pages SET deleted_at = ?, updated_at = ? WHERE notebook_id = ? AND deleted_at IS NULL`, ts, ts, id)
		return err
	})
}

// RestoreNotebook clears the deletion marker of the notebook and of the pages
// deleted together with it.
func (s *Store) RestoreNotebook(ctx context.Context, id string) error {
	now := formatTime(time.Now())
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var deletedAt sql.NullString
		err := tx.QueryRowContext(ctx, `SELECT deleted_at FROM notebooks WHERE id = ?`, id).Scan(&deletedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotebookNotFound
		}
		if err != nil {
			return err
		}
		if !deletedAt.Valid {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE notebooks SET deleted_at = NULL, updated_at = ? WHERE id = ?`, now, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE pages SET deleted_at = NULL, updated_at = ? WHERE notebook_id = ? AND deleted_at = ?`,
			now, id, deletedAt.String)
		return err
	})
}
