package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/journalapp/journal-server/internal/errors"
	"github.com/journalapp/journal-server/internal/id"
	"github.com/journalapp/journal-server/internal/media/images"
	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/pkg/domain"
	"github.com/journalapp/journal-server/pkg/retry"
)

// DefaultMediaURL is the public URL template for uploaded media; {id} is replaced.
const DefaultMediaURL = "/api/v1/media/{id}"

// MediaOptions configures the MediaService.
type MediaOptions struct {
	MaxUploadBytes int64
	// URLTemplate builds Media.URL; {id} is replaced by the media id.
	URLTemplate string
}

// MediaService accepts image uploads for image elements.
type MediaService struct {
	store     store.Store
	storage   *images.Storage
	processor *images.Processor
	retrier   *retry.Retrier
	opts      MediaOptions
	logger    *slog.Logger
}

// NewMediaService creates a new MediaService.
func NewMediaService(
	store store.Store,
	storage *images.Storage,
	processor *images.Processor,
	retrier *retry.Retrier,
	opts MediaOptions,
	logger *slog.Logger,
) *MediaService {
	if opts.URLTemplate == "" {
		opts.URLTemplate = DefaultMediaURL
	}
	if retrier == nil {
		retrier = retry.New(retry.DefaultPolicy(), logger)
	}
	return &MediaService{
		store:     store,
		storage:   storage,
		processor: processor,
		retrier:   retrier,
		opts:      opts,
		logger:    orDiscard(logger),
	}
}

// MaxUploadBytes returns the configured upload limit, 0 meaning unlimited.
func (s *MediaService) MaxUploadBytes() int64 {
	return s.opts.MaxUploadBytes
}

// Upload validates an image, stores it and records it for the caller.
func (s *MediaService) Upload(ctx context.Context, userID string, data []byte) (*domain.Media, error) {
	if len(data) == 0 {
		return nil, domainerrors.Validation("file is empty")
	}
	if s.opts.MaxUploadBytes > 0 && int64(len(data)) > s.opts.MaxUploadBytes {
		return nil, domainerrors.PayloadTooLarge(fmt.Sprintf("file exceeds %d bytes", s.opts.MaxUploadBytes))
	}

	info, err := s.processor.Inspect(data)
	switch {
	case errors.Is(err, images.ErrUnsupportedFormat):
		return nil, domainerrors.UnsupportedMedia("file must be a JPEG, PNG, GIF or WebP image")
	case errors.Is(err, images.ErrTooLarge):
		return nil, domainerrors.Validation(err.Error())
	case err != nil:
		return nil, fmt.Errorf("inspect image: %w", err)
	}

	mediaID, err := id.Generate(id.PrefixMedia)
	if err != nil {
		return nil, fmt.Errorf("generate media ID: %w", err)
	}
	key := images.Key(uuid.NewString(), info.Ext)

	err = s.retrier.Do(ctx, "store media", func(context.Context) error {
		return s.storage.Save(key, data)
	})
	if err != nil {
		return nil, fmt.Errorf("store media: %w", err)
	}

	m := &domain.Media{
		ID:          mediaID,
		UserID:      userID,
		StorageKey:  key,
		URL:         strings.ReplaceAll(s.opts.URLTemplate, "{id}", mediaID),
		ContentType: info.ContentType,
		Size:        int64(len(data)),
		Width:       info.Width,
		Height:      info.Height,
		BlurHash:    info.BlurHash,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateMedia(ctx, m); err != nil {
		if delErr := s.storage.Delete(key); delErr != nil {
			s.logger.Warn("failed to remove orphaned media file", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("record media: %w", err)
	}

	s.logger.Info("media uploaded", "media_id", m.ID, "user_id", userID, "size", m.Size, "type", m.ContentType)
	return m, nil
}

// List returns the caller's uploads, newest first.
func (s *MediaService) List(ctx context.Context, userID string) ([]*domain.Media, error) {
	media, err := s.store.ListMedia(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return media, nil
}

// Open returns a media record and the path of its bytes. Media ids are
// unguessable, so no ownership check is made for reads.
func (s *MediaService) Open(ctx context.Context, mediaID string) (*domain.Media, string, error) {
	m, err := s.store.GetMedia(ctx, mediaID)
	if err != nil {
		return nil, "", notFoundOr(err, "media")
	}
	path, err := s.storage.Path(m.StorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("media path: %w", err)
	}
	if !s.storage.Exists(m.StorageKey) {
		return nil, "", domainerrors.NotFound("media file missing")
	}
	return m, path, nil
}

// Delete removes an upload owned by the caller.
func (s *MediaService) Delete(ctx context.Context, userID, mediaID string) error {
	m, err := s.store.GetMedia(ctx, mediaID)
	if err != nil {
		return notFoundOr(err, "media")
	}
	if m.UserID != userID {
		return domainerrors.Forbidden("media belongs to another user")
	}

	if err := s.store.DeleteMedia(ctx, mediaID); err != nil {
		return notFoundOr(err, "media")
	}
	if err := s.storage.Delete(m.StorageKey); err != nil {
		s.logger.Warn("failed to remove media file", "media_id", mediaID, "error", err)
	}
	return nil
}
