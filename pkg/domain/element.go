package domain

import (
	"maps"
	"math"
)

// ElementKind is the closed set of things that can be placed on a page.
type ElementKind string

// Element kinds.
const (
	KindText    ElementKind = "text"
	KindImage   ElementKind = "image"
	KindShape   ElementKind = "shape"
	KindEmoji   ElementKind = "emoji"
	KindSticker ElementKind = "sticker"
)

// ElementKinds lists every valid kind.
var ElementKinds = []ElementKind{KindText, KindImage, KindShape, KindEmoji, KindSticker}

// Valid reports whether k is one of ElementKinds.
func (k ElementKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindShape, KindEmoji, KindSticker:
		return true
	}
	return false
}

// MinElementSize is the smallest width or height an element may have:
// 8mm at 96dpi, rounded up.
const MinElementSize = 30.0

// DefaultDuplicateOffset is applied on both axes when a duplicate request carries no offset.
const DefaultDuplicateOffset = 20.0

// Geometry is the interactive, undoable part of an element.
type Geometry struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// Finite reports whether every field is a real number.
func (g Geometry) Finite() bool {
	for _, v := range []float64{g.X, g.Y, g.Width, g.Height, g.Rotation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// NormalizeRotation maps degrees into [0, 360).
func NormalizeRotation(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	return r
}

// TextContent is the payload of a text element.
type TextContent struct {
	Text       string  `json:"text"`
	HTML       string  `json:"html,omitempty"`
	Markdown   bool    `json:"markdown,omitempty"`
	FontFamily string  `json:"font_family,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	FontWeight int     `json:"font_weight,omitempty"`
	Color      string  `json:"color,omitempty"`
	Align      string  `json:"align,omitempty"`
}

// ImageContent is the payload of an image element.
type ImageContent struct {
	URL           string `json:"url,omitempty"`
	MediaID       string `json:"media_id,omitempty"`
	NaturalWidth  int    `json:"natural_width,omitempty"`
	NaturalHeight int    `json:"natural_height,omitempty"`
	BlurHash      string `json:"blurhash,omitempty"`
}

// ShapeContent is the payload of a shape element.
type ShapeContent struct {
	Shape       string  `json:"shape"`
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
}

// EmojiContent is the payload of an emoji element.
type EmojiContent struct {
	Emoji string `json:"emoji"`
}

// StickerContent is the payload of a sticker element.
type StickerContent struct {
	StickerID string `json:"sticker_id"`
	URL       string `json:"url,omitempty"`
}

// ElementContent is a tagged union: exactly one field is set and it matches
// the element's kind.
type ElementContent struct {
	Text    *TextContent    `json:"text,omitempty"`
	Image   *ImageContent   `json:"image,omitempty"`
	Shape   *ShapeContent   `json:"shape,omitempty"`
	Emoji   *EmojiContent   `json:"emoji,omitempty"`
	Sticker *StickerContent `json:"sticker,omitempty"`
}

// Kind returns the kind of the single populated variant, or "" when zero or
// several variants are set.
func (c ElementContent) Kind() ElementKind {
	var kind ElementKind
	set := 0
	if c.Text != nil {
		kind, set = KindText, set+1
	}
	if c.Image != nil {
		kind, set = KindImage, set+1
	}
	if c.Shape != nil {
		kind, set = KindShape, set+1
	}
	if c.Emoji != nil {
		kind, set = KindEmoji, set+1
	}
	if c.Sticker != nil {
		kind, set = KindSticker, set+1
	}
	if set != 1 {
		return ""
	}
	return kind
}

// Clone deep-copies the populated variant.
func (c ElementContent) Clone() ElementContent {
	var out ElementContent
	if c.Text != nil {
		v := *c.Text
		out.Text = &v
	}
	if c.Image != nil {
		v := *c.Image
		out.Image = &v
	}
	if c.Shape != nil {
		v := *c.Shape
		out.Shape = &v
	}
	if c.Emoji != nil {
		v := *c.Emoji
		out.Emoji = &v
	}
	if c.Sticker != nil {
		v := *c.Sticker
		out.Sticker = &v
	}
	return out
}

// Style is a free-form presentation overlay (opacity, shadow, border...).
type Style map[string]any

// PageElement is a positioned, styled object on a page.
type PageElement struct {
	Syncable
	PageID string      `json:"page_id"`
	Kind   ElementKind `json:"kind"`
	Geometry
	ZIndex  int            `json:"z_index"`
	Content ElementContent `json:"content"`
	Style   Style          `json:"style"`
}

// Clone returns a copy sharing no mutable state with e.
func (e *PageElement) Clone() *PageElement {
	out := *e
	out.Content = e.Content.Clone()
	out.Style = maps.Clone(e.Style)
	if e.DeletedAt != nil {
		t := *e.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}

// ElementPatch is a partial update. Nil fields are left untouched.
// Content replaces the whole payload; Style keys are merged, a nil value removes the key.
type ElementPatch struct {
	X        *float64        `json:"x,omitempty"`
	Y        *float64        `json:"y,omitempty"`
	Width    *float64        `json:"width,omitempty"`
	Height   *float64        `json:"height,omitempty"`
	Rotation *float64        `json:"rotation,omitempty"`
	ZIndex   *int            `json:"z_index,omitempty"`
	Content  *ElementContent `json:"content,omitempty"`
	Style    Style           `json:"style,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ElementPatch) IsEmpty() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil &&
		p.Rotation == nil && p.ZIndex == nil && p.Content == nil && len(p.Style) == 0
}

// Apply writes the patch onto e. It does not validate.
func (p ElementPatch) Apply(e *PageElement) {
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Width != nil {
		e.Width = *p.Width
	}
	if p.Height != nil {
		e.Height = *p.Height
	}
	if p.Rotation != nil {
		e.Rotation = NormalizeRotation(*p.Rotation)
	}
	if p.ZIndex != nil {
		e.ZIndex = *p.ZIndex
	}
	if p.Content != nil {
		e.Content = p.Content.Clone()
	}
	if len(p.Style) > 0 {
		if e.Style == nil {
			e.Style = Style{}
		}
		for k, v := range p.Style {
			if v == nil {
				delete(e.Style, k)
				continue
			}
			e.Style[k] = v
		}
	}
}

// Duplicate returns a copy of e shifted by (dx, dy) with identity and
// lifecycle fields cleared, ready to be stored as a new element.
func (e *PageElement) Duplicate(dx, dy float64) *PageElement {
	dup := e.Clone()
	dup.Syncable = Syncable{}
	dup.X += dx
	dup.Y += dy
	return dup
}
