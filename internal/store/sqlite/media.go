package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/pkg/domain"
)

const mediaColumns = `id, user_id, storage_key, url, content_type, size, width, height, blurhash, created_at`

func scanMedia(sc scanner) (*domain.Media, error) {
	var (
		m         domain.Media
		blurHash  sql.NullString
		createdAt string
	)
	err := sc.Scan(&m.ID, &m.UserID, &m.StorageKey, &m.URL, &m.ContentType, &m.Size, &m.Width, &m.Height, &blurHash, &createdAt)
	if err != nil {
		return nil, err
	}
	m.BlurHash = blurHash.String
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMedia records an uploaded file.
func (s *Store) CreateMedia(ctx context.Context, m *domain.Media) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media (`+mediaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.StorageKey, m.URL, m.ContentType, m.Size, m.Width, m.Height,
		nullString(m.BlurHash), formatTime(m.CreatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetMedia retrieves a media record by ID.
func (s *Store) GetMedia(ctx context.Context, id string) (*domain.Media, error) {
	m, err := scanMedia(s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrMediaNotFound
	}
	return m, err
}

// ListMedia returns a user's uploads, newest first.
func (s *Store) ListMedia(ctx context.Context, userID string) ([]*domain.Media, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE user_id = ? ORDER BY created_at DESC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMedia)
}

// DeleteMedia removes a media record. The caller deletes the stored bytes.
func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrMediaNotFound)
}
