package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/pkg/domain"
)

// pageColumns must match the scan order in scanPage.
const pageColumns = `id, created_at, updated_at, deleted_at, notebook_id, title, page_number, background`

func scanPage(sc scanner) (*domain.Page, error) {
	var (
		p         domain.Page
		createdAt string
		updatedAt string
		deletedAt sql.NullString
	)

	err := sc.Scan(&p.ID, &createdAt, &updatedAt, &deletedAt, &p.NotebookID, &p.Title, &p.PageNumber, &p.Background)
	if err != nil {
		return nil, err
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if p.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePage inserts a page.
func (s *Store) CreatePage(ctx context.Context, page *domain.Page) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (`+pageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		page.ID,
		formatTime(page.CreatedAt),
		formatTime(page.UpdatedAt),
		nullTimeString(page.DeletedAt),
		page.NotebookID,
		page.Title,
		page.PageNumber,
		page.Background,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetPage retrieves a page by ID, including soft-deleted ones.
func (s *Store) GetPage(ctx context.Context, id string) (*domain.Page, error) {
	p, err := scanPage(s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrPageNotFound
	}
	return p, err
}

// ListPages returns the live pages of a notebook in page order.
func (s *Store) ListPages(ctx context.Context, notebookID string) ([]*domain.Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pageColumns+` FROM pages
		WHERE notebook_id = ? AND deleted_at IS NULL
		ORDER BY page_number ASC, created_at ASC`, notebookID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPage)
}

// UpdatePage rewrites the mutable page columns.
func (s *Store) UpdatePage(ctx context.Context, page *domain.Page) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE pages SET updated_at = ?, title = ?, page_number = ?, background = ? WHERE id = ?`,
		formatTime(page.UpdatedAt), page.Title, page.PageNumber, page.Background, page.ID)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrPageNotFound)
}

// SoftDeletePage marks a live page deleted.
func (s *Store) SoftDeletePage(ctx context.Context, id string, at time.Time) error {
	ts := formatTime(at)
	result, err := s.db.ExecContext(ctx,
		`UPDATE pages SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, ts, ts, id)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrPageNotFound)
}

// RestorePage clears a page's deletion marker.
func (s *Store) RestorePage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE pages SET deleted_at = NULL, updated_at = ? WHERE id = ?`, formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrPageNotFound)
}

// NextPageNumber returns one past the highest live page number of a notebook.
func (s *Store) NextPageNumber(ctx context.Context, notebookID string) (int, error) {
	var maxNum sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(page_number) FROM pages WHERE notebook_id = ? AND deleted_at IS NULL`, notebookID).Scan(&maxNum)
	if err != nil {
		return 0, err
	}
	if !maxNum.Valid {
		return 1, nil
	}
	return int(maxNum.Int64) + 1, nil
}

// PageOwner resolves the notebook and user above a page. Deleted pages and
// pages of deleted notebooks are reported as not found.
func (s *Store) PageOwner(ctx context.Context, pageID string) (*store.Owner, error) {
	var o store.Owner
	err := s.db.QueryRowContext(ctx, `
		SELECT n.user_id, n.id, p.id
		FROM pages p JOIN notebooks n ON n.id = p.notebook_id
		WHERE p.id = ? AND p.deleted_at IS NULL AND n.deleted_at IS NULL`, pageID).
		Scan(&o.UserID, &o.NotebookID, &o.PageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrPageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
