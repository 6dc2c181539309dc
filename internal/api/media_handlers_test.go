package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journalapp/journal-server/pkg/domain"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: 120, B: uint8(y * 8), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartBody builds a form with data under field.
func multipartBody(t *testing.T, field, filename string, data []byte) (contentType string, body *bytes.Buffer) {
	t.Helper()
	body = &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), body
}

func (ts *testServer) upload(t *testing.T, token string, data []byte) *domain.Media {
	t.Helper()
	contentType, body := multipartBody(t, "file", "photo.png", data)
	resp := ts.api.Post("/api/v1/media", bearer(token), "Content-Type: "+contentType, body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[*domain.Media](t, resp.Body.Bytes()).Data
}

func TestMedia_UploadServeDelete(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "ana@example.com").AccessToken
	data := testPNG(t, 16, 12)

	m := ts.upload(t, token, data)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "image/png", m.ContentType)
	assert.Equal(t, 16, m.Width)
	assert.Equal(t, 12, m.Height)
	assert.Equal(t, "/api/v1/media/"+m.ID, m.URL)

	resp := ts.api.Get("/api/v1/media", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[ListMediaResponse](t, resp.Body.Bytes()).Data.Media
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)

	// Image bytes load without credentials.
	resp = ts.api.Get(m.URL)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.Equal(t, CacheImmutable, resp.Header().Get("Cache-Control"))
	assert.Equal(t, data, resp.Body.Bytes())

	resp = ts.api.Delete("/api/v1/media/"+m.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get(m.URL)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestMedia_UploadRejects(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "ana@example.com").AccessToken

	t.Run("not an image", func(t *testing.T) {
		contentType, body := multipartBody(t, "file", "notes.txt", []byte("just some text"))
		resp := ts.api.Post("/api/v1/media", bearer(token), "Content-Type: "+contentType, body)
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.Code, resp.Body.String())
		env := decode[any](t, resp.Body.Bytes())
		require.NotNil(t, env.Error)
		assert.Equal(t, "UNSUPPORTED_MEDIA", env.Error.Code)
	})

	t.Run("wrong field", func(t *testing.T) {
		contentType, body := multipartBody(t, "image", "photo.png", testPNG(t, 4, 4))
		resp := ts.api.Post("/api/v1/media", bearer(token), "Content-Type: "+contentType, body)
		assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	})

	t.Run("too large", func(t *testing.T) {
		contentType, body := multipartBody(t, "file", "big.png", bytes.Repeat([]byte{0x89}, 3<<20))
		resp := ts.api.Post("/api/v1/media", bearer(token), "Content-Type: "+contentType, body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code, resp.Body.String())
		env := decode[any](t, resp.Body.Bytes())
		require.NotNil(t, env.Error)
		assert.Equal(t, "PAYLOAD_TOO_LARGE", env.Error.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		contentType, body := multipartBody(t, "file", "photo.png", testPNG(t, 4, 4))
		resp := ts.api.Post("/api/v1/media", "Content-Type: "+contentType, body)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestMedia_DeleteOtherUsers(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.register(t, "ana@example.com").AccessToken
	other := ts.register(t, "bo@example.com").AccessToken

	m := ts.upload(t, owner, testPNG(t, 4, 4))

	resp := ts.api.Delete("/api/v1/media/"+m.ID, bearer(other))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/media", bearer(other))
	assert.Empty(t, decode[ListMediaResponse](t, resp.Body.Bytes()).Data.Media)
}

func TestMedia_ImageElementFromUpload(t *testing.T) {
	ts := setupTestServer(t)
	token, page := setupPage(t, ts)
	m := ts.upload(t, token, testPNG(t, 8, 8))

	resp := ts.api.Post("/api/v1/pages/"+page.ID+"/elements", bearer(token), map[string]any{
		"kind":    "image",
		"x":       0,
		"y":       0,
		"width":   120,
		"height":  120,
		"content": map[string]any{"image": map[string]any{"media_id": m.ID}},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	el := decode[*domain.PageElement](t, resp.Body.Bytes()).Data
	require.NotNil(t, el.Content.Image)
	assert.Equal(t, m.URL, el.Content.Image.URL)
}

func TestStickers_ListAndSearch(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "ana@example.com").AccessToken

	resp := ts.api.Get("/api/v1/stickers/categories", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	categories := decode[StickerCategoriesResponse](t, resp.Body.Bytes()).Data.Categories
	require.NotEmpty(t, categories)
	assert.Equal(t, "travel", categories[0].ID)

	resp = ts.api.Get("/api/v1/stickers?category=food", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	for _, s := range decode[ListStickersResponse](t, resp.Body.Bytes()).Data.Stickers {
		assert.Equal(t, "food", s.Category)
	}

	resp = ts.api.Get("/api/v1/stickers?q=coffee", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	found := decode[ListStickersResponse](t, resp.Body.Bytes()).Data.Stickers
	require.NotEmpty(t, found)
	assert.Equal(t, "coffee", found[0].ID)

	resp = ts.api.Get("/api/v1/stickers?category=nope", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestStickers_BuiltinHasNoFile(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/stickers/airplane/file")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestStickers_RequireAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/stickers")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
