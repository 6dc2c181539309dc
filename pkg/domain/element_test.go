package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleElement() *PageElement {
	return &PageElement{
		Syncable: Syncable{ID: "el-1"},
		PageID:   "pg-1",
		Kind:     KindShape,
		Geometry: Geometry{X: 10, Y: 20, Width: 100, Height: 50, Rotation: 0},
		ZIndex:   1,
		Content:  ElementContent{Shape: &ShapeContent{Shape: "heart", Fill: "#ff0066"}},
		Style:    Style{"opacity": 0.8},
	}
}

func TestElementKind_Valid(t *testing.T) {
	for _, k := range ElementKinds {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, ElementKind("video").Valid())
	assert.False(t, ElementKind("").Valid())
}

func TestElementContent_Kind(t *testing.T) {
	assert.Equal(t, KindText, ElementContent{Text: &TextContent{Text: "hi"}}.Kind())
	assert.Equal(t, KindSticker, ElementContent{Sticker: &StickerContent{StickerID: "plane"}}.Kind())
	assert.Equal(t, ElementKind(""), ElementContent{}.Kind())
	assert.Equal(t, ElementKind(""), ElementContent{Text: &TextContent{}, Emoji: &EmojiContent{}}.Kind())
}

func TestPageElement_CloneIsIndependent(t *testing.T) {
	orig := sampleElement()
	clone := orig.Clone()

	clone.Content.Shape.Fill = "#000000"
	clone.Style["opacity"] = 0.1
	clone.X = 999

	assert.Equal(t, "#ff0066", orig.Content.Shape.Fill)
	assert.InDelta(t, 0.8, orig.Style["opacity"], 0.0001)
	assert.InDelta(t, 10.0, orig.X, 0.0001)
}

func TestElementPatch_Apply(t *testing.T) {
	e := sampleElement()

	ElementPatch{
		X:        ptr(15.0),
		Rotation: ptr(-90.0),
		ZIndex:   ptr(7),
		Style:    Style{"opacity": nil, "shadow": true},
	}.Apply(e)

	assert.InDelta(t, 15.0, e.X, 0.0001)
	assert.InDelta(t, 20.0, e.Y, 0.0001)
	assert.InDelta(t, 270.0, e.Rotation, 0.0001)
	assert.Equal(t, 7, e.ZIndex)
	assert.NotContains(t, e.Style, "opacity")
	assert.Equal(t, true, e.Style["shadow"])
}

func TestElementPatch_IsEmpty(t *testing.T) {
	assert.True(t, ElementPatch{}.IsEmpty())
	assert.False(t, ElementPatch{Y: ptr(0.0)}.IsEmpty())
	assert.False(t, ElementPatch{Style: Style{"a": 1}}.IsEmpty())
}

func TestPageElement_Duplicate(t *testing.T) {
	orig := sampleElement()
	orig.InitTimestamps()

	dup := orig.Duplicate(DefaultDuplicateOffset, DefaultDuplicateOffset)

	assert.Empty(t, dup.ID)
	assert.True(t, dup.CreatedAt.IsZero())
	assert.InDelta(t, 30.0, dup.X, 0.0001)
	assert.InDelta(t, 40.0, dup.Y, 0.0001)
	assert.Equal(t, orig.Content, dup.Content)
	assert.Equal(t, orig.Style, dup.Style)
	assert.NotSame(t, orig.Content.Shape, dup.Content.Shape)
}

func TestNormalizeRotation(t *testing.T) {
	assert.InDelta(t, 0.0, NormalizeRotation(360), 0.0001)
	assert.InDelta(t, 350.0, NormalizeRotation(-10), 0.0001)
	assert.InDelta(t, 45.0, NormalizeRotation(405), 0.0001)
}

func TestGeometry_Finite(t *testing.T) {
	assert.True(t, Geometry{X: 1, Y: 2, Width: 30, Height: 30}.Finite())
	assert.False(t, Geometry{X: math.NaN(), Width: 30, Height: 30}.Finite())
	assert.False(t, Geometry{Width: math.Inf(1), Height: 30}.Finite())
}

func TestPageElement_JSONShape(t *testing.T) {
	data, err := json.Marshal(sampleElement())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "el-1", raw["id"])
	assert.Equal(t, "pg-1", raw["page_id"])
	assert.InDelta(t, 10.0, raw["x"], 0.0001)
	assert.InDelta(t, 1.0, raw["z_index"], 0.0001)
	assert.Contains(t, raw["content"], "shape")
	assert.NotContains(t, raw, "deleted_at")
}
