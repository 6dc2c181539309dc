package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/journalapp/journal-server/internal/service"
	"github.com/journalapp/journal-server/pkg/domain"
)

func (s *Server) registerElementRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listElements",
		Method:      http.MethodGet,
		Path:        "/api/v1/pages/{id}/elements",
		Summary:     "List page elements",
		Description: "Returns the live elements of a page in ascending z-order",
		Tags:        []string{"Elements"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleListElements)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createElement",
		Method:        http.MethodPost,
		Path:          "/api/v1/pages/{id}/elements",
		Summary:       "Create element",
		Description:   "Places a new element on the page. z_index defaults to the top of the stack.",
		Tags:          []string{"Elements"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  s.maxBodyBytes(),
		Security:      []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleCreateElement)

	huma.Register(s.api, huma.Operation{
		OperationID:  "saveElements",
		Method:       http.MethodPut,
		Path:         "/api/v1/pages/{id}/elements",
		Summary:      "Batch save elements",
		Description:  "Applies several partial updates in one transaction. Any failing item aborts the batch.",
		Tags:         []string{"Elements"},
		MaxBodyBytes: s.maxBodyBytes(),
		Security:     []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleSaveElements)

	huma.Register(s.api, huma.Operation{
		OperationID: "reorderElements",
		Method:      http.MethodPost,
		Path:        "/api/v1/pages/{id}/elements/reorder",
		Summary:     "Reorder elements",
		Description: "Rewrites z_index 0..n-1 following the given order",
		Tags:        []string{"Elements"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleReorderElements)

	huma.Register(s.api, huma.Operation{
		OperationID: "getElement",
		Method:      http.MethodGet,
		Path:        "/api/v1/elements/{id}",
		Summary:     "Get element",
		Tags:        []string{"Elements"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleGetElement)

	huma.Register(s.api, huma.Operation{
		OperationID:  "updateElement",
		Method:       http.MethodPatch,
		Path:         "/api/v1/elements/{id}",
		Summary:      "Update element",
		Description:  "Applies a partial update. The content kind may not change.",
		Tags:         []string{"Elements"},
		MaxBodyBytes: s.maxBodyBytes(),
		Security:     []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleUpdateElement)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteElement",
		Method:      http.MethodDelete,
		Path:        "/api/v1/elements/{id}",
		Summary:     "Delete element",
		Description: "Soft deletes the element",
		Tags:        []string{"Elements"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleDeleteElement)

	huma.Register(s.api, huma.Operation{
		OperationID:   "duplicateElement",
		Method:        http.MethodPost,
		Path:          "/api/v1/elements/{id}/duplicate",
		Summary:       "Duplicate element",
		Description:   "Copies the element with a fresh id, offset by 20/20 unless an offset is given",
		Tags:          []string{"Elements"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleDuplicateElement)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreElement",
		Method:      http.MethodPost,
		Path:        "/api/v1/elements/{id}/restore",
		Summary:     "Restore element",
		Description: "Clears the deletion of a soft deleted element",
		Tags:        []string{"Elements"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleRestoreElement)
}

// === DTOs ===

// ElementIDInput identifies an element.
type ElementIDInput struct {
	ID string `path:"id" doc:"Element ID"`
}

// CreateElementInput wraps an element draft for Huma.
type CreateElementInput struct {
	ID   string `path:"id" doc:"Page ID"`
	Body service.CreateElementRequest
}

// UpdateElementInput wraps a partial element update for Huma.
type UpdateElementInput struct {
	ID   string `path:"id" doc:"Element ID"`
	Body service.UpdateElementRequest
}

// DuplicateElementRequest is the optional body of a duplicate request.
type DuplicateElementRequest struct {
	Offset *service.Offset `json:"offset,omitempty" doc:"Shift applied to the copy"`
}

// DuplicateElementInput wraps the duplicate request for Huma.
type DuplicateElementInput struct {
	ID   string                   `path:"id" doc:"Element ID"`
	Body *DuplicateElementRequest `required:"false"`
}

// SaveElementsRequest is the body of a batch save.
type SaveElementsRequest struct {
	Items []service.BatchItem `json:"items" doc:"Partial updates keyed by element ID"`
}

// SaveElementsInput wraps the batch save request for Huma.
type SaveElementsInput struct {
	ID   string `path:"id" doc:"Page ID"`
	Body SaveElementsRequest
}

// ReorderElementsRequest is the body of a reorder request.
type ReorderElementsRequest struct {
	IDs []string `json:"ids" doc:"Element IDs from bottom to top"`
}

// ReorderElementsInput wraps the reorder request for Huma.
type ReorderElementsInput struct {
	ID   string `path:"id" doc:"Page ID"`
	Body ReorderElementsRequest
}

// ElementOutput wraps an element for Huma.
type ElementOutput struct {
	Body *domain.PageElement
}

// ListElementsResponse contains the elements of a page.
type ListElementsResponse struct {
	Elements []*domain.PageElement `json:"elements" doc:"Elements in ascending z-order"`
}

// ListElementsOutput wraps a list of elements for Huma.
type ListElementsOutput struct {
	Body ListElementsResponse
}

func elementList(elements []*domain.PageElement) *ListElementsOutput {
	if elements == nil {
		elements = []*domain.PageElement{}
	}
	return &ListElementsOutput{Body: ListElementsResponse{Elements: elements}}
}

// === Handlers ===

func (s *Server) handleListElements(ctx context.Context, input *PageIDInput) (*ListElementsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	elements, err := s.services.Element.List(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return elementList(elements), nil
}

func (s *Server) handleCreateElement(ctx context.Context, input *CreateElementInput) (*ElementOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	el, err := s.services.Element.Create(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &ElementOutput{Body: el}, nil
}

func (s *Server) handleSaveElements(ctx context.Context, input *SaveElementsInput) (*ListElementsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	elements, err := s.services.Element.SaveBatch(ctx, userID, input.ID, input.Body.Items)
	if err != nil {
		return nil, err
	}

	return elementList(elements), nil
}

func (s *Server) handleReorderElements(ctx context.Context, input *ReorderElementsInput) (*ListElementsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	elements, err := s.services.Element.Reorder(ctx, userID, input.ID, input.Body.IDs)
	if err != nil {
		return nil, err
	}

	return elementList(elements), nil
}

func (s *Server) handleGetElement(ctx context.Context, input *ElementIDInput) (*ElementOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	el, err := s.services.Element.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ElementOutput{Body: el}, nil
}

func (s *Server) handleUpdateElement(ctx context.Context, input *UpdateElementInput) (*ElementOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	el, err := s.services.Element.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &ElementOutput{Body: el}, nil
}

func (s *Server) handleDeleteElement(ctx context.Context, input *ElementIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Element.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Element deleted"}}, nil
}

func (s *Server) handleDuplicateElement(ctx context.Context, input *DuplicateElementInput) (*ElementOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	var offset *service.Offset
	if input.Body != nil {
		offset = input.Body.Offset
	}

	el, err := s.services.Element.Duplicate(ctx, userID, input.ID, offset)
	if err != nil {
		return nil, err
	}

	return &ElementOutput{Body: el}, nil
}

func (s *Server) handleRestoreElement(ctx context.Context, input *ElementIDInput) (*ElementOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	el, err := s.services.Element.Restore(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ElementOutput{Body: el}, nil
}
