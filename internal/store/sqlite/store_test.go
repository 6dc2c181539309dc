package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedPage creates a user, a notebook and one page, returning their ids.
func seedPage(t *testing.T, s *Store) (userID, notebookID, pageID string) {
	t.Helper()
	ctx := context.Background()

	user := makeTestUser("usr-1", "writer@example.com")
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	nb := makeTestNotebook("nb-1", user.ID, "Lisbon")
	if err := s.CreateNotebook(ctx, nb); err != nil {
		t.Fatalf("CreateNotebook: %v", err)
	}
	page := makeTestPage("pg-1", nb.ID, 1)
	if err := s.CreatePage(ctx, page); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	return user.ID, nb.ID, page.ID
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	for _, table := range []string{"users", "sessions", "notebooks", "pages", "page_elements", "media"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()

	s, err = Open(dbPath, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s.Close()
}

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	out, err := parseTime(formatTime(in))
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("round trip: got %v, want %v", out, in)
	}

	// Whole seconds must still sort before later fractions.
	if formatTime(in) >= formatTime(in.Add(time.Millisecond)) {
		t.Errorf("timestamps do not sort lexically")
	}
}

func TestNullHelpers(t *testing.T) {
	if nullString("").Valid {
		t.Error("empty string should be NULL")
	}
	if !nullString("x").Valid {
		t.Error("non-empty string should be valid")
	}
	if nullTimeString(nil).Valid {
		t.Error("nil time should be NULL")
	}
	got, err := parseNullableTime(nullTimeString(nil))
	if err != nil || got != nil {
		t.Errorf("parseNullableTime(NULL) = %v, %v", got, err)
	}
}
