package images

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journalapp/journal-server/internal/logger"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gradient(w, h)))
	return buf.Bytes()
}

func newTestProcessor(maxDim int) *Processor {
	return NewProcessor(maxDim, logger.Discard().Logger)
}

func TestProcessor_InspectPNG(t *testing.T) {
	info, err := newTestProcessor(4096).Inspect(encodePNG(t, 200, 100))
	require.NoError(t, err)

	assert.Equal(t, "png", info.Format)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, ".png", info.Ext)
	assert.Equal(t, 200, info.Width)
	assert.Equal(t, 100, info.Height)
	assert.NotEmpty(t, info.BlurHash)
}

func TestProcessor_InspectJPEGAndGIF(t *testing.T) {
	var jbuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jbuf, gradient(40, 40), nil))
	info, err := newTestProcessor(0).Inspect(jbuf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", info.ContentType)
	assert.Equal(t, ".jpg", info.Ext)

	var gbuf bytes.Buffer
	require.NoError(t, gif.Encode(&gbuf, gradient(10, 10), nil))
	info, err = newTestProcessor(0).Inspect(gbuf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/gif", info.ContentType)
}

func TestProcessor_RejectsNonImages(t *testing.T) {
	_, err := newTestProcessor(0).Inspect([]byte("%PDF-1.7 not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestProcessor_RejectsOversizedImages(t *testing.T) {
	_, err := newTestProcessor(50).Inspect(encodePNG(t, 60, 10))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestResizeForBlurHash(t *testing.T) {
	small := gradient(32, 16)
	assert.Same(t, image.Image(small), resizeForBlurHash(small))

	wide := resizeForBlurHash(gradient(640, 10))
	assert.Equal(t, blurHashSize, wide.Bounds().Dx())
	assert.Equal(t, 1, wide.Bounds().Dy())

	tall := resizeForBlurHash(gradient(100, 400))
	assert.Equal(t, 16, tall.Bounds().Dx())
	assert.Equal(t, blurHashSize, tall.Bounds().Dy())
}
