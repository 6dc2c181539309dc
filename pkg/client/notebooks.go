package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/journalapp/journal-server/pkg/domain"
)

// CreateNotebookRequest creates a notebook.
type CreateNotebookRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CoverColor  string     `json:"cover_color,omitempty"`
	TripStart   *time.Time `json:"trip_start,omitempty"`
	TripEnd     *time.Time `json:"trip_end,omitempty"`
}

// UpdateNotebookRequest partially updates a notebook. Nil fields are left
// unchanged.
type UpdateNotebookRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	CoverColor  *string    `json:"cover_color,omitempty"`
	TripStart   *time.Time `json:"trip_start,omitempty"`
	TripEnd     *time.Time `json:"trip_end,omitempty"`
}

// CreatePageRequest adds a page to a notebook. A nil PageNumber appends.
type CreatePageRequest struct {
	Title      string `json:"title,omitempty"`
	PageNumber *int   `json:"page_number,omitempty"`
	Background string `json:"background,omitempty"`
}

// UpdatePageRequest partially updates a page.
type UpdatePageRequest struct {
	Title      *string `json:"title,omitempty"`
	PageNumber *int    `json:"page_number,omitempty"`
	Background *string `json:"background,omitempty"`
}

func notebookPath(id string) string { return APIPrefix + "/notebooks/" + url.PathEscape(id) }
func pagePath(id string) string     { return APIPrefix + "/pages/" + url.PathEscape(id) }

// ListNotebooks returns the caller's notebooks, newest first.
func (c *Client) ListNotebooks(ctx context.Context) ([]*domain.Notebook, error) {
	var out struct {
		Notebooks []*domain.Notebook `json:"notebooks"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: APIPrefix + "/notebooks"}, &out); err != nil {
		return nil, err
	}
	return out.Notebooks, nil
}

// CreateNotebook creates a notebook.
func (c *Client) CreateNotebook(ctx context.Context, req CreateNotebookRequest) (*domain.Notebook, error) {
	return c.notebook(ctx, http.MethodPost, APIPrefix+"/notebooks", req)
}

// GetNotebook fetches one notebook.
func (c *Client) GetNotebook(ctx context.Context, id string) (*domain.Notebook, error) {
	return c.notebook(ctx, http.MethodGet, notebookPath(id), nil)
}

// UpdateNotebook applies a partial update.
func (c *Client) UpdateNotebook(ctx context.Context, id string, req UpdateNotebookRequest) (*domain.Notebook, error) {
	return c.notebook(ctx, http.MethodPatch, notebookPath(id), req)
}

// DeleteNotebook soft-deletes a notebook.
func (c *Client) DeleteNotebook(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: notebookPath(id)}, nil)
}

// RestoreNotebook undoes a delete.
func (c *Client) RestoreNotebook(ctx context.Context, id string) (*domain.Notebook, error) {
	return c.notebook(ctx, http.MethodPost, notebookPath(id)+"/restore", nil)
}

func (c *Client) notebook(ctx context.Context, method, path string, body any) (*domain.Notebook, error) {
	var out domain.Notebook
	if err := c.do(ctx, request{method: method, path: path, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPages returns the pages of a notebook in page order.
func (c *Client) ListPages(ctx context.Context, notebookID string) ([]*domain.Page, error) {
	var out struct {
		Pages []*domain.Page `json:"pages"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: notebookPath(notebookID) + "/pages"}, &out); err != nil {
		return nil, err
	}
	return out.Pages, nil
}

// CreatePage adds a page to a notebook.
func (c *Client) CreatePage(ctx context.Context, notebookID string, req CreatePageRequest) (*domain.Page, error) {
	return c.page(ctx, http.MethodPost, notebookPath(notebookID)+"/pages", req)
}

// GetPage fetches one page.
func (c *Client) GetPage(ctx context.Context, id string) (*domain.Page, error) {
	return c.page(ctx, http.MethodGet, pagePath(id), nil)
}

// UpdatePage applies a partial update.
func (c *Client) UpdatePage(ctx context.Context, id string, req UpdatePageRequest) (*domain.Page, error) {
	return c.page(ctx, http.MethodPatch, pagePath(id), req)
}

// DeletePage soft-deletes a page.
func (c *Client) DeletePage(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: pagePath(id)}, nil)
}

// RestorePage undoes a delete.
func (c *Client) RestorePage(ctx context.Context, id string) (*domain.Page, error) {
	return c.page(ctx, http.MethodPost, pagePath(id)+"/restore", nil)
}

func (c *Client) page(ctx context.Context, method, path string, body any) (*domain.Page, error) {
	var out domain.Page
	if err := c.do(ctx, request{method: method, path: path, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
