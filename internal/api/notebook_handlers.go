package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/journalapp/journal-server/internal/service"
	"github.com/journalapp/journal-server/pkg/domain"
)

func (s *Server) registerNotebookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotebooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/notebooks",
		Summary:     "List notebooks",
		Description: "Returns the caller's notebooks, newest first",
		Tags:        []string{"Notebooks"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleListNotebooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createNotebook",
		Method:        http.MethodPost,
		Path:          "/api/v1/notebooks",
		Summary:       "Create notebook",
		Description:   "Creates a travel notebook",
		Tags:          []string{"Notebooks"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleCreateNotebook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNotebook",
		Method:      http.MethodGet,
		Path:        "/api/v1/notebooks/{id}",
		Summary:     "Get notebook",
		Tags:        []string{"Notebooks"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleGetNotebook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateNotebook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/notebooks/{id}",
		Summary:     "Update notebook",
		Description: "Updates the given fields (owner only)",
		Tags:        []string{"Notebooks"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleUpdateNotebook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteNotebook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notebooks/{id}",
		Summary:     "Delete notebook",
		Description: "Soft deletes the notebook and its pages (owner only)",
		Tags:        []string{"Notebooks"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleDeleteNotebook)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreNotebook",
		Method:      http.MethodPost,
		Path:        "/api/v1/notebooks/{id}/restore",
		Summary:     "Restore notebook",
		Description: "Restores a soft deleted notebook and its pages (owner only)",
		Tags:        []string{"Notebooks"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleRestoreNotebook)
}

// === DTOs ===

// NotebookIDInput identifies a notebook.
type NotebookIDInput struct {
	ID string `path:"id" doc:"Notebook ID"`
}

// CreateNotebookInput wraps the create notebook request for Huma.
type CreateNotebookInput struct {
	Body service.CreateNotebookRequest
}

// UpdateNotebookInput wraps the update notebook request for Huma.
type UpdateNotebookInput struct {
	ID   string `path:"id" doc:"Notebook ID"`
	Body service.UpdateNotebookRequest
}

// NotebookOutput wraps a notebook for Huma.
type NotebookOutput struct {
	Body *domain.Notebook
}

// ListNotebooksResponse contains a list of notebooks.
type ListNotebooksResponse struct {
	Notebooks []*domain.Notebook `json:"notebooks" doc:"Notebooks, newest first"`
}

// ListNotebooksOutput wraps the list notebooks response for Huma.
type ListNotebooksOutput struct {
	Body ListNotebooksResponse
}

// === Handlers ===

func (s *Server) handleListNotebooks(ctx context.Context, _ *struct{}) (*ListNotebooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	notebooks, err := s.services.Notebook.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if notebooks == nil {
		notebooks = []*domain.Notebook{}
	}

	return &ListNotebooksOutput{Body: ListNotebooksResponse{Notebooks: notebooks}}, nil
}

func (s *Server) handleCreateNotebook(ctx context.Context, input *CreateNotebookInput) (*NotebookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	nb, err := s.services.Notebook.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &NotebookOutput{Body: nb}, nil
}

func (s *Server) handleGetNotebook(ctx context.Context, input *NotebookIDInput) (*NotebookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	nb, err := s.services.Notebook.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &NotebookOutput{Body: nb}, nil
}

func (s *Server) handleUpdateNotebook(ctx context.Context, input *UpdateNotebookInput) (*NotebookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	nb, err := s.services.Notebook.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &NotebookOutput{Body: nb}, nil
}

func (s *Server) handleDeleteNotebook(ctx context.Context, input *NotebookIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Notebook.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Notebook deleted"}}, nil
}

func (s *Server) handleRestoreNotebook(ctx context.Context, input *NotebookIDInput) (*NotebookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	nb, err := s.services.Notebook.Restore(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &NotebookOutput{Body: nb}, nil
}
