package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journalapp/journal-server/internal/auth"
	"github.com/journalapp/journal-server/internal/service"
	"github.com/journalapp/journal-server/pkg/domain"
)

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegister_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "Ana@Example.com",
		"password":     "correct-horse-battery",
		"display_name": "Ana",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[service.AuthResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.Equal(t, "ana@example.com", env.Data.User.Email)
	assert.Equal(t, "Ana", env.Data.User.DisplayName)
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.NotEmpty(t, env.Data.RefreshToken)
	assert.Equal(t, "Bearer", env.Data.TokenType)
	assert.Positive(t, env.Data.ExpiresIn)
	assert.NotContains(t, resp.Body.String(), "password")

	cookies := resp.Result().Cookies()
	access := cookieByName(cookies, AccessCookieName)
	require.NotNil(t, access)
	assert.Equal(t, env.Data.AccessToken, access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, "/", access.Path)

	refresh := cookieByName(cookies, RefreshCookieName)
	require.NotNil(t, refresh)
	assert.Equal(t, env.Data.RefreshToken, refresh.Value)
	assert.Equal(t, refreshCookiePath, refresh.Path)
	assert.Equal(t, http.SameSiteStrictMode, refresh.SameSite)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "ana@example.com")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "ana@example.com",
		"password": "another-password",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing email",
			body: map[string]any{"password": "correct-horse-battery"},
		},
		{
			name: "invalid email",
			body: map[string]any{"email": "not-an-email", "password": "correct-horse-battery"},
		},
		{
			name: "short password",
			body: map[string]any{"email": "ana@example.com", "password": "short"},
		},
		{
			name: "unknown field",
			body: map[string]any{"email": "ana@example.com", "password": "correct-horse-battery", "admin": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/register", tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			env := decode[any](t, resp.Body.Bytes())
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION", env.Error.Code)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "ana@example.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "ana@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[service.AuthResponse](t, resp.Body.Bytes())
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.NotNil(t, cookieByName(resp.Result().Cookies(), AccessCookieName))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "ana@example.com")

	tests := []struct {
		name  string
		email string
	}{
		{name: "wrong password", email: "ana@example.com"},
		{name: "unknown email", email: "nobody@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/login", map[string]any{
				"email":    tt.email,
				"password": "wrong-password",
			})

			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			env := decode[any](t, resp.Body.Bytes())
			require.NotNil(t, env.Error)
			assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
		})
	}
}

func TestLogin_RateLimited(t *testing.T) {
	ts := setupTestServer(t, withLoginRate(2))
	ts.register(t, "ana@example.com")

	body := map[string]any{"email": "ana@example.com", "password": "correct-horse-battery"}

	resp := ts.api.Post("/api/v1/auth/login", body)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)
}

func TestMe_WithBearerAndCookie(t *testing.T) {
	ts := setupTestServer(t)
	session := ts.register(t, "ana@example.com")

	t.Run("bearer", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/auth/me", bearer(session.AccessToken))
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		env := decode[*domain.User](t, resp.Body.Bytes())
		assert.Equal(t, session.User.ID, env.Data.ID)
	})

	t.Run("cookie", func(t *testing.T) {
		resp := ts.api.Get("/api/v1/auth/me", "Cookie: "+AccessCookieName+"="+session.AccessToken)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		env := decode[*domain.User](t, resp.Body.Bytes())
		assert.Equal(t, "ana@example.com", env.Data.Email)
	})
}

func TestMe_Unauthenticated(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name     string
		args     []any
		wantCode string
	}{
		{name: "no token", args: nil, wantCode: "UNAUTHORIZED"},
		{name: "garbage token", args: []any{bearer("v4.local.garbage")}, wantCode: "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/auth/me", tt.args...)
			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			env := decode[any](t, resp.Body.Bytes())
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestMe_ExpiredToken(t *testing.T) {
	ts := setupTestServer(t)
	session := ts.register(t, "ana@example.com")

	expired, err := auth.NewTokenService(ts.key, -time.Minute, time.Hour)
	require.NoError(t, err)
	token, err := expired.GenerateAccessToken(session.User)
	require.NoError(t, err)

	resp := ts.api.Get("/api/v1/auth/me", bearer(token))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "TOKEN_EXPIRED", env.Error.Code)
}

func TestRefresh_WithCookie(t *testing.T) {
	ts := setupTestServer(t)
	session := ts.register(t, "ana@example.com")

	resp := ts.api.Post("/api/v1/auth/refresh", "Cookie: "+RefreshCookieName+"="+session.RefreshToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[service.AuthResponse](t, resp.Body.Bytes())
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.NotEqual(t, session.RefreshToken, env.Data.RefreshToken, "refresh tokens rotate")

	// The rotated-out token no longer works.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": session.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefresh_WithBody(t *testing.T) {
	ts := setupTestServer(t)
	session := ts.register(t, "ana@example.com")

	resp := ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": session.RefreshToken})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestRefresh_Missing(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/refresh")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout_ClearsCookies(t *testing.T) {
	ts := setupTestServer(t)
	session := ts.register(t, "ana@example.com")

	resp := ts.api.Post("/api/v1/auth/logout", "Cookie: "+RefreshCookieName+"="+session.RefreshToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		c := cookieByName(resp.Result().Cookies(), name)
		require.NotNil(t, c, name)
		assert.Negative(t, c.MaxAge, name)
	}

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": session.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
