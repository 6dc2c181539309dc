package editor

import (
	"context"
	"math"

	"github.com/journalapp/journal-server/pkg/domain"
)

// Element model shared with the backend wire format.
type (
	Element  = domain.PageElement
	Geometry = domain.Geometry
	Patch    = domain.ElementPatch
	Kind     = domain.ElementKind
	Content  = domain.ElementContent
	Style    = domain.Style
)

// Draft is an element that has not been stored yet. The backend assigns
// its id and timestamps.
type Draft struct {
	Kind Kind `json:"kind"`
	Geometry
	ZIndex  *int    `json:"z_index,omitempty"`
	Content Content `json:"content"`
	Style   Style   `json:"style,omitempty"`
}

// Offset shifts a duplicate relative to its source.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BatchItem is one entry of a batch save.
type BatchItem struct {
	ID    string `json:"id"`
	Patch Patch  `json:"patch"`
}

// Backend is the system of record for page elements.
type Backend interface {
	ListElements(ctx context.Context, pageID string) ([]*Element, error)
	CreateElement(ctx context.Context, pageID string, draft Draft) (*Element, error)
	UpdateElement(ctx context.Context, id string, patch Patch) (*Element, error)
	DeleteElement(ctx context.Context, id string) error
	DuplicateElement(ctx context.Context, id string, offset *Offset) (*Element, error)
	RestoreElement(ctx context.Context, id string) (*Element, error)
}

// BatchSaver is implemented by backends that can save several elements in
// one request.
type BatchSaver interface {
	SaveElements(ctx context.Context, pageID string, items []BatchItem) ([]*Element, error)
}

func geometryPatch(g Geometry) Patch {
	return Patch{X: &g.X, Y: &g.Y, Width: &g.Width, Height: &g.Height, Rotation: &g.Rotation}
}

func sameGeometry(a, b Geometry) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.Width-b.Width) < eps && math.Abs(a.Height-b.Height) < eps &&
		math.Abs(a.Rotation-b.Rotation) < eps
}

// mergePatch overlays src onto dst; fields set in src win.
func mergePatch(dst, src Patch) Patch {
	out := dst
	if src.X != nil {
		out.X = src.X
	}
	if src.Y != nil {
		out.Y = src.Y
	}
	if src.Width != nil {
		out.Width = src.Width
	}
	if src.Height != nil {
		out.Height = src.Height
	}
	if src.Rotation != nil {
		out.Rotation = src.Rotation
	}
	if src.ZIndex != nil {
		out.ZIndex = src.ZIndex
	}
	if src.Content != nil {
		out.Content = src.Content
	}
	if len(src.Style) > 0 {
		merged := make(Style, len(dst.Style)+len(src.Style))
		for k, v := range dst.Style {
			merged[k] = v
		}
		for k, v := range src.Style {
			merged[k] = v
		}
		out.Style = merged
	}
	return out
}

// refreshPatch replaces the values of every field set in p with the
// element's current values, so a delayed save never sends stale data.
func refreshPatch(p Patch, e *Element) Patch {
	out := p
	if p.X != nil {
		v := e.X
		out.X = &v
	}
	if p.Y != nil {
		v := e.Y
		out.Y = &v
	}
	if p.Width != nil {
		v := e.Width
		out.Width = &v
	}
	if p.Height != nil {
		v := e.Height
		out.Height = &v
	}
	if p.Rotation != nil {
		v := e.Rotation
		out.Rotation = &v
	}
	if p.ZIndex != nil {
		v := e.ZIndex
		out.ZIndex = &v
	}
	if p.Content != nil {
		c := e.Content.Clone()
		out.Content = &c
	}
	return out
}
