package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/journalapp/journal-server/internal/service"
	"github.com/journalapp/journal-server/pkg/domain"
)

func (s *Server) registerPageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPages",
		Method:      http.MethodGet,
		Path:        "/api/v1/notebooks/{id}/pages",
		Summary:     "List pages",
		Description: "Returns the live pages of a notebook in page order",
		Tags:        []string{"Pages"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleListPages)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPage",
		Method:        http.MethodPost,
		Path:          "/api/v1/notebooks/{id}/pages",
		Summary:       "Create page",
		Description:   "Adds a page; page_number defaults to one past the last page",
		Tags:          []string{"Pages"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleCreatePage)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPage",
		Method:      http.MethodGet,
		Path:        "/api/v1/pages/{id}",
		Summary:     "Get page",
		Tags:        []string{"Pages"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleGetPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePage",
		Method:      http.MethodPatch,
		Path:        "/api/v1/pages/{id}",
		Summary:     "Update page",
		Tags:        []string{"Pages"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleUpdatePage)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePage",
		Method:      http.MethodDelete,
		Path:        "/api/v1/pages/{id}",
		Summary:     "Delete page",
		Description: "Soft deletes the page",
		Tags:        []string{"Pages"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleDeletePage)

	huma.Register(s.api, huma.Operation{
		OperationID: "restorePage",
		Method:      http.MethodPost,
		Path:        "/api/v1/pages/{id}/restore",
		Summary:     "Restore page",
		Tags:        []string{"Pages"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleRestorePage)
}

// === DTOs ===

// PageIDInput identifies a page.
type PageIDInput struct {
	ID string `path:"id" doc:"Page ID"`
}

// CreatePageInput wraps the create page request for Huma.
type CreatePageInput struct {
	ID   string `path:"id" doc:"Notebook ID"`
	Body service.CreatePageRequest
}

// UpdatePageInput wraps the update page request for Huma.
type UpdatePageInput struct {
	ID   string `path:"id" doc:"Page ID"`
	Body service.UpdatePageRequest
}

// PageOutput wraps a page for Huma.
type PageOutput struct {
	Body *domain.Page
}

// ListPagesResponse contains the pages of a notebook.
type ListPagesResponse struct {
	Pages []*domain.Page `json:"pages" doc:"Pages in page order"`
}

// ListPagesOutput wraps the list pages response for Huma.
type ListPagesOutput struct {
	Body ListPagesResponse
}

// === Handlers ===

func (s *Server) handleListPages(ctx context.Context, input *NotebookIDInput) (*ListPagesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	pages, err := s.services.Page.List(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []*domain.Page{}
	}

	return &ListPagesOutput{Body: ListPagesResponse{Pages: pages}}, nil
}

func (s *Server) handleCreatePage(ctx context.Context, input *CreatePageInput) (*PageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Page.Create(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &PageOutput{Body: page}, nil
}

func (s *Server) handleGetPage(ctx context.Context, input *PageIDInput) (*PageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Page.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &PageOutput{Body: page}, nil
}

func (s *Server) handleUpdatePage(ctx context.Context, input *UpdatePageInput) (*PageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Page.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &PageOutput{Body: page}, nil
}

func (s *Server) handleDeletePage(ctx context.Context, input *PageIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Page.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Page deleted"}}, nil
}

func (s *Server) handleRestorePage(ctx context.Context, input *PageIDInput) (*PageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Page.Restore(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &PageOutput{Body: page}, nil
}
