package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/journalapp/journal-server/internal/http/response"
	"github.com/journalapp/journal-server/pkg/domain"
)

func (s *Server) registerStickerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listStickers",
		Method:      http.MethodGet,
		Path:        "/api/v1/stickers",
		Summary:     "List stickers",
		Description: "Lists stickers, optionally limited to a category and matched against a search query",
		Tags:        []string{"Stickers"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleListStickers)

	huma.Register(s.api, huma.Operation{
		OperationID: "listStickerCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/stickers/categories",
		Summary:     "List sticker categories",
		Tags:        []string{"Stickers"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleListStickerCategories)

	// Direct chi route for sticker file streaming.
	s.router.Get("/api/v1/stickers/{id}/file", s.handleServeSticker)
}

// === DTOs ===

// ListStickersInput contains the sticker filters.
type ListStickersInput struct {
	Category string `query:"category" doc:"Category ID"`
	Query    string `query:"q" doc:"Search text matched against names and tags"`
	Limit    int    `query:"limit" minimum:"0" maximum:"200" doc:"Maximum number of results (default 50)"`
}

// ListStickersResponse contains matching stickers.
type ListStickersResponse struct {
	Stickers []domain.Sticker `json:"stickers" doc:"Matching stickers, best match first"`
}

// ListStickersOutput wraps the sticker list for Huma.
type ListStickersOutput struct {
	Body ListStickersResponse
}

// StickerCategoriesResponse contains the sticker categories.
type StickerCategoriesResponse struct {
	Categories []domain.StickerCategory `json:"categories" doc:"Non-empty categories"`
}

// StickerCategoriesOutput wraps the categories for Huma.
type StickerCategoriesOutput struct {
	Body StickerCategoriesResponse
}

// === Handlers ===

func (s *Server) handleListStickers(ctx context.Context, input *ListStickersInput) (*ListStickersOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	stickers, err := s.services.Sticker.Search(ctx, input.Query, input.Category, input.Limit)
	if err != nil {
		return nil, err
	}
	if stickers == nil {
		stickers = []domain.Sticker{}
	}

	return &ListStickersOutput{Body: ListStickersResponse{Stickers: stickers}}, nil
}

func (s *Server) handleListStickerCategories(ctx context.Context, _ *struct{}) (*StickerCategoriesOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	categories := s.services.Sticker.Categories()
	if categories == nil {
		categories = []domain.StickerCategory{}
	}

	return &StickerCategoriesOutput{Body: StickerCategoriesResponse{Categories: categories}}, nil
}

func (s *Server) handleServeSticker(w http.ResponseWriter, r *http.Request) {
	path, err := s.services.Sticker.FilePath(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Cache-Control", CacheOneDay)
	http.ServeFile(w, r, path)
}
