package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/pkg/domain"
)

func makeTestSession(id, userID, tokenHash string, expiresAt time.Time) *domain.Session {
	now := time.Now().UTC()
	return &domain.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		LastSeenAt:       now,
		IPAddress:        "127.0.0.1",
		UserAgent:        "test",
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeTestUser("usr-1", "a@example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	sess := makeTestSession("ses-1", "usr-1", "hash-1", time.Now().Add(time.Hour))
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSessionByRefreshToken(ctx, "hash-1")
	if err != nil {
		t.Fatalf("GetSessionByRefreshToken: %v", err)
	}
	if got.ID != "ses-1" || got.UserID != "usr-1" {
		t.Errorf("unexpected session %+v", got)
	}
	if got.IPAddress != "127.0.0.1" {
		t.Errorf("IPAddress: got %q", got.IPAddress)
	}

	// Rotate the refresh token.
	got.RefreshTokenHash = "hash-2"
	got.Touch()
	if err := s.UpdateSession(ctx, got); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	if _, err := s.GetSessionByRefreshToken(ctx, "hash-1"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("old token should be gone, got %v", err)
	}
	if _, err := s.GetSessionByRefreshToken(ctx, "hash-2"); err != nil {
		t.Errorf("new token lookup: %v", err)
	}

	if err := s.DeleteSession(ctx, "ses-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.GetSession(ctx, "ses-1"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := s.DeleteSession(ctx, "ses-1"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("second delete: expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeTestUser("usr-1", "a@example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateSession(ctx, makeTestSession("ses-old", "usr-1", "h-old", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := s.CreateSession(ctx, makeTestSession("ses-new", "usr-1", "h-new", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	n, err := s.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d sessions, want 1", n)
	}
	if _, err := s.GetSession(ctx, "ses-new"); err != nil {
		t.Errorf("live session removed: %v", err)
	}
}

func TestDeleteUserSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeTestUser("usr-1", "a@example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	for i, h := range []string{"h1", "h2"} {
		sess := makeTestSession("ses-"+h, "usr-1", h, time.Now().Add(time.Duration(i+1)*time.Hour))
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	if err := s.DeleteUserSessions(ctx, "usr-1"); err != nil {
		t.Fatalf("DeleteUserSessions: %v", err)
	}
	if _, err := s.GetSession(ctx, "ses-h1"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
