package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/journalapp/journal-server/pkg/domain"
	"github.com/journalapp/journal-server/pkg/editor"
)

// UploadMedia stores an image and returns its record. Uploads are retried on
// transient failures.
func (c *Client) UploadMedia(ctx context.Context, filename string, data []byte) (*domain.Media, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req := request{method: http.MethodPost, path: APIPrefix + "/media", raw: buf.Bytes(), contentType: mw.FormDataContentType()}
	var out domain.Media
	err = c.retrier.Do(ctx, "upload media", func(ctx context.Context) error {
		return c.do(ctx, req, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMedia returns the caller's uploads.
func (c *Client) ListMedia(ctx context.Context) ([]*domain.Media, error) {
	var out struct {
		Media []*domain.Media `json:"media"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: APIPrefix + "/media"}, &out); err != nil {
		return nil, err
	}
	return out.Media, nil
}

// DeleteMedia removes an upload.
func (c *Client) DeleteMedia(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: APIPrefix + "/media/" + url.PathEscape(id)}, nil)
}

// ListStickers searches the sticker library. Empty arguments match everything.
func (c *Client) ListStickers(ctx context.Context, category, query string) ([]domain.Sticker, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if query != "" {
		q.Set("q", query)
	}
	path := APIPrefix + "/stickers"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Stickers []domain.Sticker `json:"stickers"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return out.Stickers, nil
}

// StickerCategories lists the non-empty sticker categories.
func (c *Client) StickerCategories(ctx context.Context) ([]domain.StickerCategory, error) {
	var out struct {
		Categories []domain.StickerCategory `json:"categories"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: APIPrefix + "/stickers/categories"}, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// EditorSettings are the editing defaults the server recommends.
type EditorSettings struct {
	NudgeStep       float64 `json:"nudge_step"`
	NudgeStepLarge  float64 `json:"nudge_step_large"`
	DebounceMS      int64   `json:"debounce_ms"`
	HistoryCapacity int     `json:"history_capacity"`
	GridSize        float64 `json:"grid_size"`
	MinElementSize  float64 `json:"min_element_size"`
	DuplicateOffset float64 `json:"duplicate_offset"`
	MaxUploadBytes  int64   `json:"max_upload_bytes"`
}

// EditorSettings returns the editing defaults the server recommends.
func (c *Client) EditorSettings(ctx context.Context) (*EditorSettings, error) {
	var out EditorSettings
	if err := c.do(ctx, request{method: http.MethodGet, path: APIPrefix + "/editor/settings"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EditorOptions converts server settings into editor options.
func EditorOptions(s *EditorSettings) editor.Options {
	return editor.Options{
		NudgeStep:       s.NudgeStep,
		NudgeStepLarge:  s.NudgeStepLarge,
		DebounceWindow:  time.Duration(s.DebounceMS) * time.Millisecond,
		HistoryCapacity: s.HistoryCapacity,
		GridSize:        s.GridSize,
		MinElementSize:  s.MinElementSize,
	}
}
