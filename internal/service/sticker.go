package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainerrors "github.com/journalapp/journal-server/internal/errors"
	"github.com/journalapp/journal-server/internal/stickers"
	"github.com/journalapp/journal-server/pkg/domain"
)

// StickerService exposes the sticker library to the API.
type StickerService struct {
	library *stickers.Library
}

// NewStickerService creates a new StickerService.
func NewStickerService(library *stickers.Library) *StickerService {
	return &StickerService{library: library}
}

// Search lists stickers of category matching query. An empty query lists the category.
func (s *StickerService) Search(ctx context.Context, query, category string, limit int) ([]domain.Sticker, error) {
	category = strings.TrimSpace(category)
	if category != "" && !s.hasCategory(category) {
		return nil, domainerrors.NotFoundf("sticker category %s not found", category)
	}
	found, err := s.library.Search(ctx, query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("search stickers: %w", err)
	}
	return found, nil
}

// Categories returns the non-empty sticker categories.
func (s *StickerService) Categories() []domain.StickerCategory {
	return s.library.Categories()
}

// Get returns one sticker.
func (s *StickerService) Get(id string) (domain.Sticker, error) {
	st, err := s.library.Get(id)
	if errors.Is(err, stickers.ErrNotFound) {
		return domain.Sticker{}, domainerrors.NotFound("sticker not found").WithCause(err)
	}
	return st, err
}

// FilePath returns the path of a file sticker's image.
func (s *StickerService) FilePath(id string) (string, error) {
	path, err := s.library.FilePath(id)
	if errors.Is(err, stickers.ErrNotFound) {
		return "", domainerrors.NotFound("sticker file not found").WithCause(err)
	}
	return path, err
}

func (s *StickerService) hasCategory(id string) bool {
	for _, c := range s.library.Categories() {
		if c.ID == id {
			return true
		}
	}
	return false
}
