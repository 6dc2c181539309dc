package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/pkg/domain"
)

// elementColumns must match the scan order in scanElement.
const elementColumns = `id, created_at, updated_at, deleted_at, page_id, kind,
	x, y, width, height, rotation, z_index, content, style`

func scanElement(sc scanner) (*domain.PageElement, error) {
	var (
		e         domain.PageElement
		createdAt string
		updatedAt string
		deletedAt sql.NullString
		kind      string
		content   string
		style     string
	)

	err := sc.Scan(&e.ID, &createdAt, &updatedAt, &deletedAt, &e.PageID, &kind,
		&e.X, &e.Y, &e.Width, &e.Height, &e.Rotation, &e.ZIndex, &content, &style)
	if err != nil {
		return nil, err
	}

	e.Kind = domain.ElementKind(kind)
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if e.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(content), &e.Content); err != nil {
		return nil, fmt.Errorf("decode content of %s: %w", e.ID, err)
	}
	if err := json.Unmarshal([]byte(style), &e.Style); err != nil {
		return nil, fmt.Errorf("decode style of %s: %w", e.ID, err)
	}
	return &e, nil
}

func encodeElementJSON(e *domain.PageElement) (content, style string, err error) {
	c, err := json.Marshal(e.Content)
	if err != nil {
		return "", "", fmt.Errorf("encode content: %w", err)
	}
	st := e.Style
	if st == nil {
		st = domain.Style{}
	}
	sb, err := json.Marshal(st)
	if err != nil {
		return "", "", fmt.Errorf("encode style: %w", err)
	}
	return string(c), string(sb), nil
}

// CreateElement inserts an element.
func (s *Store) CreateElement(ctx context.Context, el *domain.PageElement) error {
	content, style, err := encodeElementJSON(el)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO page_elements (`+elementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		el.ID,
		formatTime(el.CreatedAt),
		formatTime(el.UpdatedAt),
		nullTimeString(el.DeletedAt),
		el.PageID,
		string(el.Kind),
		el.X, el.Y, el.Width, el.Height, el.Rotation,
		el.ZIndex,
		content,
		style,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetElement retrieves an element by ID, including soft-deleted ones.
func (s *Store) GetElement(ctx context.Context, id string) (*domain.PageElement, error) {
	e, err := scanElement(s.db.QueryRowContext(ctx, `SELECT `+elementColumns+` FROM page_elements WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrElementNotFound
	}
	return e, err
}

// ListElements returns the live elements of a page in ascending z order.
// Ties are broken by creation time, then id, so the order is stable.
func (s *Store) ListElements(ctx context.Context, pageID string) ([]*domain.PageElement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+elementColumns+` FROM page_elements
		WHERE page_id = ? AND deleted_at IS NULL
		ORDER BY z_index ASC, created_at ASC, id ASC`, pageID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanElement)
}

const updateElementSQL = `
	UPDATE page_elements SET updated_at = ?, x = ?, y = ?, width = ?, height = ?, rotation = ?,
		z_index = ?, content = ?, style = ?
	WHERE id = ? AND deleted_at IS NULL`

func execUpdateElement(ctx context.Context, exec interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, el *domain.PageElement) error {
	content, style, err := encodeElementJSON(el)
	if err != nil {
		return err
	}
	result, err := exec.ExecContext(ctx, updateElementSQL,
		formatTime(el.UpdatedAt),
		el.X, el.Y, el.Width, el.Height, el.Rotation,
		el.ZIndex,
		content,
		style,
		el.ID,
	)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrElementNotFound.WithMessage("element "+el.ID+" not found"))
}

// UpdateElement rewrites a live element's mutable columns.
func (s *Store) UpdateElement(ctx context.Context, el *domain.PageElement) error {
	return execUpdateElement(ctx, s.db, el)
}

// UpdateElements rewrites several elements atomically. Any missing element aborts the batch.
func (s *Store) UpdateElements(ctx context.Context, els []*domain.PageElement) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, el := range els {
			if err := execUpdateElement(ctx, tx, el); err != nil {
				return err
			}
		}
		return nil
	})
}

// SoftDeleteElement marks a live element deleted.
func (s *Store) SoftDeleteElement(ctx context.Context, id string, at time.Time) error {
	ts := formatTime(at)
	result, err := s.db.ExecContext(ctx,
		`UPDATE page_elements SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, ts, ts, id)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrElementNotFound)
}

// RestoreElement clears an element's deletion marker. Restoring a live element is a no-op.
func (s *Store) RestoreElement(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE page_elements SET deleted_at = NULL, updated_at = ? WHERE id = ?`, formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrElementNotFound)
}

// MaxZIndex returns the highest z_index among live elements of a page, or -1 for an empty page.
func (s *Store) MaxZIndex(ctx context.Context, pageID string) (int, error) {
	var maxZ sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(z_index) FROM page_elements WHERE page_id = ? AND deleted_at IS NULL`, pageID).Scan(&maxZ)
	if err != nil {
		return 0, err
	}
	if !maxZ.Valid {
		return -1, nil
	}
	return int(maxZ.Int64), nil
}

// ReorderElements assigns z_index 0..n-1 following ids. Every id must be a
// live element of the page.
func (s *Store) ReorderElements(ctx context.Context, pageID string, ids []string) error {
	now := formatTime(time.Now())
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i, id := range ids {
			result, err := tx.ExecContext(ctx, `
				UPDATE page_elements SET z_index = ?, updated_at = ?
				WHERE id = ? AND page_id = ? AND deleted_at IS NULL`, i, now, id, pageID)
			if err != nil {
				return err
			}
			if err := expectOne(result, store.ErrElementNotFound.WithMessage("element "+id+" not found on page")); err != nil {
				return err
			}
		}
		return nil
	})
}

// ElementOwner resolves the page, notebook and user above an element.
// The element itself may be soft-deleted (restore needs that); its page and
// notebook must be live.
func (s *Store) ElementOwner(ctx context.Context, elementID string) (*store.Owner, error) {
	var o store.Owner
	err := s.db.QueryRowContext(ctx, `
		SELECT n.user_id, n.id, p.id
		FROM page_elements e
		JOIN pages p ON p.id = e.page_id
		JOIN notebooks n ON n.id = p.notebook_id
		WHERE e.id = ? AND p.deleted_at IS NULL AND n.deleted_at IS NULL`, elementID).
		Scan(&o.UserID, &o.NotebookID, &o.PageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrElementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
