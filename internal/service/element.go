package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "github.com/journalapp/journal-server/internal/errors"
	"github.com/journalapp/journal-server/internal/id"
	"github.com/journalapp/journal-server/internal/richtext"
	"github.com/journalapp/journal-server/internal/sse"
	"github.com/journalapp/journal-server/internal/store"
	"github.com/journalapp/journal-server/internal/validation"
	"github.com/journalapp/journal-server/pkg/domain"
)

// StickerCatalog resolves sticker ids referenced by sticker elements.
type StickerCatalog interface {
	Get(id string) (domain.Sticker, error)
}

// ElementRules are the geometry rules applied to every element write.
type ElementRules struct {
	MinSize         float64
	DuplicateOffset float64
}

// DefaultElementRules returns the rules used when none are configured.
func DefaultElementRules() ElementRules {
	return ElementRules{MinSize: domain.MinElementSize, DuplicateOffset: domain.DefaultDuplicateOffset}
}

// ElementService manages the elements placed on pages.
type ElementService struct {
	store     store.Store
	stickers  StickerCatalog
	events    sse.Emitter
	rules     ElementRules
	validator *validation.Validator
	logger    *slog.Logger
}

// NewElementService creates a new ElementService. stickers may be nil, in
// which case sticker elements are accepted without catalog lookup.
func NewElementService(
	store store.Store,
	stickers StickerCatalog,
	events sse.Emitter,
	rules ElementRules,
	logger *slog.Logger,
) *ElementService {
	if rules.MinSize <= 0 {
		rules.MinSize = domain.MinElementSize
	}
	if rules.DuplicateOffset == 0 {
		rules.DuplicateOffset = domain.DefaultDuplicateOffset
	}
	return &ElementService{
		store:     store,
		stickers:  stickers,
		events:    orNoop(events),
		rules:     rules,
		validator: validation.Default(),
		logger:    orDiscard(logger),
	}
}

// CreateElementRequest is an element draft. ZIndex defaults to the top of the page.
type CreateElementRequest struct {
	Kind     domain.ElementKind    `json:"kind" validate:"required,elementkind"`
	X        float64               `json:"x"`
	Y        float64               `json:"y"`
	Width    float64               `json:"width"`
	Height   float64               `json:"height"`
	Rotation float64               `json:"rotation,omitempty"`
	ZIndex   *int                  `json:"z_index,omitempty"`
	Content  domain.ElementContent `json:"content"`
	Style    domain.Style          `json:"style,omitempty"`
}

// UpdateElementRequest is a partial update. Kind may be sent but must not change.
type UpdateElementRequest struct {
	Kind *domain.ElementKind `json:"kind,omitempty"`
	domain.ElementPatch
}

// Offset shifts a duplicate relative to its source.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BatchItem is one entry of a batch save.
type BatchItem struct {
	ID    string               `json:"id" validate:"required"`
	Patch UpdateElementRequest `json:"patch"`
}

// List returns the live elements of a page in stacking order.
func (s *ElementService) List(ctx context.Context, userID, pageID string) ([]*domain.PageElement, error) {
	if _, err := ownedPage(ctx, s.store, userID, pageID); err != nil {
		return nil, err
	}
	elements, err := s.store.ListElements(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	return elements, nil
}

// Get returns a live element owned by the caller.
func (s *ElementService) Get(ctx context.Context, userID, elementID string) (*domain.PageElement, error) {
	if _, err := ownedElement(ctx, s.store, userID, elementID); err != nil {
		return nil, err
	}
	return s.liveElement(ctx, elementID)
}

// Create places a new element on a page.
func (s *ElementService) Create(ctx context.Context, userID, pageID string, req CreateElementRequest) (*domain.PageElement, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := ownedPage(ctx, s.store, userID, pageID); err != nil {
		return nil, err
	}

	el := &domain.PageElement{
		PageID: pageID,
		Kind:   req.Kind,
		Geometry: domain.Geometry{
			X:        req.X,
			Y:        req.Y,
			Width:    req.Width,
			Height:   req.Height,
			Rotation: domain.NormalizeRotation(req.Rotation),
		},
		Content: req.Content.Clone(),
		Style:   req.Style,
	}
	if err := s.checkElement(ctx, userID, el); err != nil {
		return nil, err
	}

	if req.ZIndex != nil {
		el.ZIndex = *req.ZIndex
	} else {
		top, err := s.store.MaxZIndex(ctx, pageID)
		if err != nil {
			return nil, fmt.Errorf("max z-index: %w", err)
		}
		el.ZIndex = top + 1
	}

	if err := s.insert(ctx, el); err != nil {
		return nil, err
	}

	s.events.Emit(sse.NewElementEvent(sse.EventElementCreated, userID, el))
	return el, nil
}

// Update applies a partial update to a live element.
func (s *ElementService) Update(ctx context.Context, userID, elementID string, req UpdateElementRequest) (*domain.PageElement, error) {
	if _, err := ownedElement(ctx, s.store, userID, elementID); err != nil {
		return nil, err
	}
	el, err := s.liveElement(ctx, elementID)
	if err != nil {
		return nil, err
	}

	if err := s.applyPatch(ctx, userID, el, req); err != nil {
		return nil, err
	}
	if err := s.store.UpdateElement(ctx, el); err != nil {
		return nil, notFoundOr(err, "element")
	}

	s.events.Emit(sse.NewElementEvent(sse.EventElementUpdated, userID, el))
	return el, nil
}

// Delete soft-deletes an element.
func (s *ElementService) Delete(ctx context.Context, userID, elementID string) error {
	owner, err := ownedElement(ctx, s.store, userID, elementID)
	if err != nil {
		return err
	}
	if _, err := s.liveElement(ctx, elementID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.store.SoftDeleteElement(ctx, elementID, now); err != nil {
		return notFoundOr(err, "element")
	}

	s.events.Emit(sse.NewElementDeletedEvent(userID, owner.PageID, elementID, now))
	return nil
}

// Duplicate copies a live element onto the top of its page, shifted by offset
// or by the configured default offset when offset is nil.
func (s *ElementService) Duplicate(ctx context.Context, userID, elementID string, offset *Offset) (*domain.PageElement, error) {
	if _, err := ownedElement(ctx, s.store, userID, elementID); err != nil {
		return nil, err
	}
	src, err := s.liveElement(ctx, elementID)
	if err != nil {
		return nil, err
	}

	dx, dy := s.rules.DuplicateOffset, s.rules.DuplicateOffset
	if offset != nil {
		dx, dy = offset.X, offset.Y
	}
	dup := src.Duplicate(dx, dy)
	if !dup.Finite() {
		return nil, domainerrors.Validation("offset must be a finite number")
	}

	top, err := s.store.MaxZIndex(ctx, src.PageID)
	if err != nil {
		return nil, fmt.Errorf("max z-index: %w", err)
	}
	dup.ZIndex = top + 1

	if err := s.insert(ctx, dup); err != nil {
		return nil, err
	}

	s.events.Emit(sse.NewElementEvent(sse.EventElementCreated, userID, dup))
	return dup, nil
}

// Restore clears an element's deletion marker. Restoring a live element is a no-op.
func (s *ElementService) Restore(ctx context.Context, userID, elementID string) (*domain.PageElement, error) {
	if _, err := ownedElement(ctx, s.store, userID, elementID); err != nil {
		return nil, err
	}
	el, err := s.store.GetElement(ctx, elementID)
	if err != nil {
		return nil, notFoundOr(err, "element")
	}
	if !el.IsDeleted() {
		return el, nil
	}

	if err := s.store.RestoreElement(ctx, elementID); err != nil {
		return nil, notFoundOr(err, "element")
	}
	if el, err = s.store.GetElement(ctx, elementID); err != nil {
		return nil, notFoundOr(err, "element")
	}

	s.events.Emit(sse.NewElementEvent(sse.EventElementRestored, userID, el))
	return el, nil
}

// SaveBatch applies every patch in one transaction. Any invalid or missing
// element aborts the whole batch.
func (s *ElementService) SaveBatch(ctx context.Context, userID, pageID string, items []BatchItem) ([]*domain.PageElement, error) {
	if len(items) == 0 {
		return nil, domainerrors.Validation("batch must contain at least one element")
	}
	if _, err := ownedPage(ctx, s.store, userID, pageID); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(items))
	updated := make([]*domain.PageElement, 0, len(items))
	for i, item := range items {
		if err := s.validator.Validate(item); err != nil {
			return nil, err
		}
		if _, dup := seen[item.ID]; dup {
			return nil, domainerrors.Validationf("element %s appears more than once", item.ID)
		}
		seen[item.ID] = struct{}{}

		el, err := s.liveElement(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		if el.PageID != pageID {
			return nil, domainerrors.NotFoundf("element %s not found on page", item.ID)
		}
		if err := s.applyPatch(ctx, userID, el, item.Patch); err != nil {
			var de *domainerrors.Error
			if errors.As(err, &de) {
				return nil, de.WithDetails(map[string]any{"index": i, "id": item.ID, "details": de.Details})
			}
			return nil, err
		}
		updated = append(updated, el)
	}

	if err := s.store.UpdateElements(ctx, updated); err != nil {
		return nil, notFoundOr(err, "element")
	}

	for _, el := range updated {
		s.events.Emit(sse.NewElementEvent(sse.EventElementUpdated, userID, el))
	}
	return updated, nil
}

// Reorder rewrites the stacking order of a page: ids[0] goes to the bottom.
func (s *ElementService) Reorder(ctx context.Context, userID, pageID string, ids []string) ([]*domain.PageElement, error) {
	if len(ids) == 0 {
		return nil, domainerrors.Validation("ids must not be empty")
	}
	seen := make(map[string]struct{}, len(ids))
	for _, elementID := range ids {
		if _, dup := seen[elementID]; dup {
			return nil, domainerrors.Validationf("element %s appears more than once", elementID)
		}
		seen[elementID] = struct{}{}
	}

	if _, err := ownedPage(ctx, s.store, userID, pageID); err != nil {
		return nil, err
	}
	if err := s.store.ReorderElements(ctx, pageID, ids); err != nil {
		return nil, notFoundOr(err, "element")
	}

	s.events.Emit(sse.NewElementsReorderedEvent(userID, pageID, ids))
	return s.store.ListElements(ctx, pageID)
}

func (s *ElementService) liveElement(ctx context.Context, elementID string) (*domain.PageElement, error) {
	el, err := s.store.GetElement(ctx, elementID)
	if err != nil {
		return nil, notFoundOr(err, "element")
	}
	if el.IsDeleted() {
		return nil, domainerrors.NotFoundf("element %s not found", elementID)
	}
	return el, nil
}

func (s *ElementService) insert(ctx context.Context, el *domain.PageElement) error {
	elementID, err := id.Generate(id.PrefixElement)
	if err != nil {
		return fmt.Errorf("generate element ID: %w", err)
	}
	el.ID = elementID
	el.InitTimestamps()
	if el.Style == nil {
		el.Style = domain.Style{}
	}

	if err := s.store.CreateElement(ctx, el); err != nil {
		return notFoundOr(err, "element")
	}
	return nil
}

func (s *ElementService) applyPatch(ctx context.Context, userID string, el *domain.PageElement, req UpdateElementRequest) error {
	if req.Kind != nil && *req.Kind != el.Kind {
		return domainerrors.ValidationWithDetails("element kind cannot change",
			map[string]string{"kind": "must be " + string(el.Kind)})
	}
	if req.Content != nil && req.Content.Kind() != el.Kind {
		return domainerrors.ValidationWithDetails("content does not match element kind",
			map[string]string{"content": "must hold exactly one " + string(el.Kind) + " payload"})
	}

	req.Apply(el)
	if err := s.checkElement(ctx, userID, el); err != nil {
		return err
	}
	el.Touch()
	return nil
}

// checkElement validates geometry and content, filling derived content fields.
func (s *ElementService) checkElement(ctx context.Context, userID string, el *domain.PageElement) error {
	fields := map[string]string{}

	if !el.Finite() {
		fields["geometry"] = "must contain only finite numbers"
	}
	if el.Width < s.rules.MinSize {
		fields["width"] = fmt.Sprintf("must be at least %g", s.rules.MinSize)
	}
	if el.Height < s.rules.MinSize {
		fields["height"] = fmt.Sprintf("must be at least %g", s.rules.MinSize)
	}
	if el.Content.Kind() != el.Kind {
		fields["content"] = "must hold exactly one " + string(el.Kind) + " payload"
	}
	if len(fields) > 0 {
		return domainerrors.ValidationWithDetails("invalid element", fields)
	}

	return s.checkContent(ctx, userID, &el.Content)
}

func (s *ElementService) checkContent(ctx context.Context, userID string, c *domain.ElementContent) error {
	switch {
	case c.Text != nil:
		if c.Text.HTML != "" {
			if md, ok := richtext.ToMarkdown(c.Text.HTML); ok {
				c.Text.Text = md
				c.Text.Markdown = true
			} else {
				c.Text.Text = richtext.PlainText(c.Text.HTML)
			}
			c.Text.HTML = ""
		}
		if c.Text.FontSize < 0 {
			return fieldError("content.text.font_size", "must not be negative")
		}

	case c.Image != nil:
		if c.Image.MediaID != "" {
			m, err := s.store.GetMedia(ctx, c.Image.MediaID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fieldError("content.image.media_id", "unknown media")
				}
				return fmt.Errorf("get media: %w", err)
			}
			if m.UserID != userID {
				return domainerrors.Forbidden("media belongs to another user")
			}
			c.Image.URL = m.URL
			c.Image.NaturalWidth = m.Width
			c.Image.NaturalHeight = m.Height
			c.Image.BlurHash = m.BlurHash
		}
		if strings.TrimSpace(c.Image.URL) == "" {
			return fieldError("content.image.url", "is required")
		}

	case c.Shape != nil:
		if err := s.validator.Var("content.shape.shape", c.Shape.Shape, "shapekind"); err != nil {
			return err
		}
		if c.Shape.StrokeWidth < 0 {
			return fieldError("content.shape.stroke_width", "must not be negative")
		}

	case c.Emoji != nil:
		if strings.TrimSpace(c.Emoji.Emoji) == "" {
			return fieldError("content.emoji.emoji", "is required")
		}

	case c.Sticker != nil:
		if strings.TrimSpace(c.Sticker.StickerID) == "" {
			return fieldError("content.sticker.sticker_id", "is required")
		}
		if s.stickers != nil {
			st, err := s.stickers.Get(c.Sticker.StickerID)
			if err != nil {
				return fieldError("content.sticker.sticker_id", "unknown sticker")
			}
			c.Sticker.URL = st.URL
		}
	}
	return nil
}

func fieldError(field, msg string) error {
	return domainerrors.ValidationWithDetails(field+" "+msg, map[string]string{field: msg})
}
