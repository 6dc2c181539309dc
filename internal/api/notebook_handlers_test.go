package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journalapp/journal-server/pkg/domain"
)

func TestNotebooks_CRUD(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "ana@example.com").AccessToken

	nb := ts.createNotebook(t, token, "Lisbon 2026")
	assert.NotEmpty(t, nb.ID)
	assert.Equal(t, "Lisbon 2026", nb.Title)

	resp := ts.api.Get("/api/v1/notebooks", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[ListNotebooksResponse](t, resp.Body.Bytes())
	require.Len(t, list.Data.Notebooks, 1)
	assert.Equal(t, nb.ID, list.Data.Notebooks[0].ID)

	resp = ts.api.Patch("/api/v1/notebooks/"+nb.ID, bearer(token), map[string]any{
		"title":       "Lisbon & Porto",
		"cover_color": "#ff8800",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[*domain.Notebook](t, resp.Body.Bytes()).Data
	assert.Equal(t, "Lisbon & Porto", updated.Title)
	assert.Equal(t, "#ff8800", updated.CoverColor)

	resp = ts.api.Delete("/api/v1/notebooks/"+nb.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	msg := decode[MessageResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Notebook deleted", msg.Data.Message)

	resp = ts.api.Get("/api/v1/notebooks/"+nb.ID, bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Post("/api/v1/notebooks/"+nb.ID+"/restore", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	restored := decode[*domain.Notebook](t, resp.Body.Bytes()).Data
	assert.Nil(t, restored.DeletedAt)
}

func TestNotebooks_EmptyListIsArray(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "ana@example.com").AccessToken

	resp := ts.api.Get("/api/v1/notebooks", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"notebooks":[]`)
}

func TestNotebooks_Validation(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "ana@example.com").AccessToken

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing title", body: map[string]any{}},
		{name: "blank title", body: map[string]any{"title": "   "}},
		{name: "bad color", body: map[string]any{"title": "Trip", "cover_color": "orange"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/notebooks", bearer(token), tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			env := decode[any](t, resp.Body.Bytes())
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION", env.Error.Code)
		})
	}
}

func TestNotebooks_Ownership(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.register(t, "ana@example.com").AccessToken
	other := ts.register(t, "bo@example.com").AccessToken

	nb := ts.createNotebook(t, owner, "Private trip")

	resp := ts.api.Get("/api/v1/notebooks/"+nb.ID, bearer(other))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/notebooks/"+nb.ID, bearer(other))
	assert.Equal(t, http.StatusForbidden, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	resp = ts.api.Get("/api/v1/notebooks", bearer(other))
	list := decode[ListNotebooksResponse](t, resp.Body.Bytes())
	assert.Empty(t, list.Data.Notebooks)
}

func TestNotebooks_RequireAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/notebooks")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestPages_CRUD(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "ana@example.com").AccessToken
	nb := ts.createNotebook(t, token, "Trip")

	first := ts.createPage(t, token, nb.ID)
	second := ts.createPage(t, token, nb.ID)
	assert.Equal(t, 1, first.PageNumber)
	assert.Equal(t, 2, second.PageNumber)

	resp := ts.api.Get("/api/v1/notebooks/"+nb.ID+"/pages", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	pages := decode[ListPagesResponse](t, resp.Body.Bytes()).Data.Pages
	require.Len(t, pages, 2)
	assert.Equal(t, first.ID, pages[0].ID)

	resp = ts.api.Patch("/api/v1/pages/"+second.ID, bearer(token), map[string]any{"title": "Day two"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Day two", decode[*domain.Page](t, resp.Body.Bytes()).Data.Title)

	resp = ts.api.Delete("/api/v1/pages/"+second.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/notebooks/"+nb.ID+"/pages", bearer(token))
	assert.Len(t, decode[ListPagesResponse](t, resp.Body.Bytes()).Data.Pages, 1)

	resp = ts.api.Post("/api/v1/pages/"+second.ID+"/restore", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestPages_OtherUsersNotebook(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.register(t, "ana@example.com").AccessToken
	other := ts.register(t, "bo@example.com").AccessToken
	nb := ts.createNotebook(t, owner, "Trip")

	resp := ts.api.Post("/api/v1/notebooks/"+nb.ID+"/pages", bearer(other), map[string]any{"title": "Sneaky"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}
