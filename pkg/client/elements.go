package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/journalapp/journal-server/pkg/editor"
)

var (
	_ editor.Backend    = (*Client)(nil)
	_ editor.BatchSaver = (*Client)(nil)
)

func elementPath(id string) string { return APIPrefix + "/elements/" + url.PathEscape(id) }

type elementList struct {
	Elements []*editor.Element `json:"elements"`
}

// ListElements returns the live elements of a page in stacking order.
func (c *Client) ListElements(ctx context.Context, pageID string) ([]*editor.Element, error) {
	var out elementList
	if err := c.do(ctx, request{method: http.MethodGet, path: pagePath(pageID) + "/elements"}, &out); err != nil {
		return nil, err
	}
	return out.Elements, nil
}

// GetElement fetches one element.
func (c *Client) GetElement(ctx context.Context, id string) (*editor.Element, error) {
	return c.element(ctx, request{method: http.MethodGet, path: elementPath(id)})
}

// CreateElement places a new element on a page.
func (c *Client) CreateElement(ctx context.Context, pageID string, d editor.Draft) (*editor.Element, error) {
	return c.element(ctx, request{method: http.MethodPost, path: pagePath(pageID) + "/elements", body: d})
}

// UpdateElement sends a partial update. Failures are returned as-is; only
// batch saves retry.
func (c *Client) UpdateElement(ctx context.Context, id string, p editor.Patch) (*editor.Element, error) {
	return c.element(ctx, request{method: http.MethodPatch, path: elementPath(id), body: p})
}

// DeleteElement soft-deletes an element.
func (c *Client) DeleteElement(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: elementPath(id)}, nil)
}

// DuplicateElement copies an element. A nil offset uses the server default.
func (c *Client) DuplicateElement(ctx context.Context, id string, offset *editor.Offset) (*editor.Element, error) {
	var body any
	if offset != nil {
		body = struct {
			Offset *editor.Offset `json:"offset"`
		}{offset}
	}
	return c.element(ctx, request{method: http.MethodPost, path: elementPath(id) + "/duplicate", body: body})
}

// RestoreElement undoes a delete.
func (c *Client) RestoreElement(ctx context.Context, id string) (*editor.Element, error) {
	return c.element(ctx, request{method: http.MethodPost, path: elementPath(id) + "/restore"})
}

// SaveElements applies several partial updates in one transaction.
func (c *Client) SaveElements(ctx context.Context, pageID string, items []editor.BatchItem) ([]*editor.Element, error) {
	body := struct {
		Items []editor.BatchItem `json:"items"`
	}{items}

	var out elementList
	err := c.retrier.Do(ctx, "save elements", func(ctx context.Context) error {
		return c.do(ctx, request{method: http.MethodPut, path: pagePath(pageID) + "/elements", body: body}, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("save %d elements: %w", len(items), err)
	}
	return out.Elements, nil
}

// ReorderElements restacks a page; ids run from bottom to top.
func (c *Client) ReorderElements(ctx context.Context, pageID string, ids []string) ([]*editor.Element, error) {
	body := struct {
		IDs []string `json:"ids"`
	}{ids}

	var out elementList
	if err := c.do(ctx, request{method: http.MethodPost, path: pagePath(pageID) + "/elements/reorder", body: body}, &out); err != nil {
		return nil, err
	}
	return out.Elements, nil
}

func (c *Client) element(ctx context.Context, req request) (*editor.Element, error) {
	var out editor.Element
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
