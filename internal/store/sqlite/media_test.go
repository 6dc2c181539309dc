package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/pkg/domain"
)

func TestMediaLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID, _, _ := seedPage(t, s)

	m := &domain.Media{
		ID:          "med-1",
		UserID:      userID,
		StorageKey:  "ab/abcdef.webp",
		URL:         "/api/v1/media/med-1",
		ContentType: "image/webp",
		Size:        2048,
		Width:       640,
		Height:      480,
		BlurHash:    "LEHV6nWB2yk8pyo0adR*.7kCMdnj",
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.CreateMedia(ctx, m); err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}

	got, err := s.GetMedia(ctx, "med-1")
	if err != nil {
		t.Fatalf("GetMedia: %v", err)
	}
	if got.StorageKey != m.StorageKey || got.Width != 640 || got.BlurHash != m.BlurHash {
		t.Errorf("unexpected media %+v", got)
	}

	list, err := s.ListMedia(ctx, userID)
	if err != nil {
		t.Fatalf("ListMedia: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("ListMedia: got %d", len(list))
	}

	dup := *m
	dup.ID = "med-2"
	if err := s.CreateMedia(ctx, &dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("reused storage key: expected ErrAlreadyExists, got %v", err)
	}

	if err := s.DeleteMedia(ctx, "med-1"); err != nil {
		t.Fatalf("DeleteMedia: %v", err)
	}
	if _, err := s.GetMedia(ctx, "med-1"); !errors.Is(err, store.ErrMediaNotFound) {
		t.Errorf("expected ErrMediaNotFound, got %v", err)
	}
	if err := s.DeleteMedia(ctx, "med-1"); !errors.Is(err, store.ErrMediaNotFound) {
		t.Errorf("second delete: expected ErrMediaNotFound, got %v", err)
	}
}
