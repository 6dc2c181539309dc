package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	domainerrors "github.com/journalapp/journal-server/internal/errors"
	"github.com/journalapp/journal-server/internal/http/response"
	"github.com/journalapp/journal-server/pkg/domain"
)

func (s *Server) registerMediaRoutes() {
	// Upload and download use chi directly for multipart parsing and file streaming.
	s.router.Post("/api/v1/media", s.handleUploadMedia)
	s.router.Get("/api/v1/media/{id}", s.handleServeMedia)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMedia",
		Method:      http.MethodGet,
		Path:        "/api/v1/media",
		Summary:     "List media",
		Description: "Returns the caller's uploaded images, newest first",
		Tags:        []string{"Media"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleListMedia)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteMedia",
		Method:      http.MethodDelete,
		Path:        "/api/v1/media/{id}",
		Summary:     "Delete media",
		Description: "Deletes an uploaded image (owner only)",
		Tags:        []string{"Media"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleDeleteMedia)
}

// === DTOs ===

// MediaIDInput identifies an uploaded image.
type MediaIDInput struct {
	ID string `path:"id" doc:"Media ID"`
}

// ListMediaResponse contains the caller's uploads.
type ListMediaResponse struct {
	Media []*domain.Media `json:"media" doc:"Uploaded images"`
}

// ListMediaOutput wraps the media list for Huma.
type ListMediaOutput struct {
	Body ListMediaResponse
}

// === Handlers ===

func (s *Server) handleListMedia(ctx context.Context, _ *struct{}) (*ListMediaOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	media, err := s.services.Media.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if media == nil {
		media = []*domain.Media{}
	}

	return &ListMediaOutput{Body: ListMediaResponse{Media: media}}, nil
}

func (s *Server) handleDeleteMedia(ctx context.Context, input *MediaIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Media.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Media deleted"}}, nil
}

// handleUploadMedia accepts a multipart form with a single "file" part.
func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := GetUserID(ctx)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	limit := s.services.Media.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.HandleError(w, domainerrors.PayloadTooLarge("file exceeds the upload limit"), s.logger)
			return
		}
		response.HandleError(w, domainerrors.Validation(`multipart field "file" is required`).WithCause(err), s.logger)
		return
	}
	defer file.Close()

	// One byte past the limit is enough for the service to reject the upload.
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		response.HandleError(w, domainerrors.Validation("failed to read upload").WithCause(err), s.logger)
		return
	}

	media, err := s.services.Media.Upload(ctx, userID, data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.logger.Info("Media uploaded",
		"media_id", media.ID,
		"user_id", userID,
		"filename", header.Filename,
		"size", media.Size,
	)
	response.Created(w, media, s.logger)
}

// handleServeMedia streams image bytes. Media IDs are unguessable, so images
// load in plain <img> tags without credentials.
func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	media, path, err := s.services.Media.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", media.ContentType)
	w.Header().Set("Cache-Control", CacheImmutable)
	http.ServeFile(w, r, path)
}
