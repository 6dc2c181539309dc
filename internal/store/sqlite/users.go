package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/pkg/domain"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, deleted_at, email, password_hash, display_name, last_login_at`

func scanUser(sc scanner) (*domain.User, error) {
	var (
		u           domain.User
		createdAt   string
		updatedAt   string
		deletedAt   sql.NullString
		lastLoginAt sql.NullString
	)

	err := sc.Scan(&u.ID, &createdAt, &updatedAt, &deletedAt, &u.Email, &u.PasswordHash, &u.DisplayName, &lastLoginAt)
	if err != nil {
		return nil, err
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if u.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}
	last, err := parseNullableTime(lastLoginAt)
	if err != nil {
		return nil, err
	}
	if last != nil {
		u.LastLoginAt = *last
	}
	return &u, nil
}

// CreateUser inserts a new user. Returns store.ErrEmailTaken if the email
// (case-insensitively) is already registered.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, deleted_at, email, email_lower, password_hash, display_name, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		nullTimeString(user.DeletedAt),
		user.Email,
		domain.NormalizeEmail(user.Email),
		user.PasswordHash,
		user.DisplayName,
		nullLoginTime(user),
	)
	if isUniqueViolation(err) {
		return store.ErrEmailTaken
	}
	return err
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? AND deleted_at IS NULL`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	return u, err
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_lower = ? AND deleted_at IS NULL`, domain.NormalizeEmail(email))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	return u, err
}

// UpdateUser rewrites the mutable user columns.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET updated_at = ?, email = ?, email_lower = ?, password_hash = ?, display_name = ?, last_login_at = ?
		WHERE id = ?`,
		formatTime(user.UpdatedAt),
		user.Email,
		domain.NormalizeEmail(user.Email),
		user.PasswordHash,
		user.DisplayName,
		nullLoginTime(user),
		user.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	return expectOne(result, store.ErrUserNotFound)
}

func nullLoginTime(u *domain.User) sql.NullString {
	if u.LastLoginAt.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(u.LastLoginAt), Valid: true}
}
