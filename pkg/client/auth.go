package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/journalapp/journal-server/pkg/domain"
)

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	User             *domain.User `json:"user"`
	AccessToken      string       `json:"access_token"`
	RefreshToken     string       `json:"refresh_token"`
	TokenType        string       `json:"token_type"`
	ExpiresIn        int          `json:"expires_in"` // Seconds until the access token expires
	SessionID        string       `json:"session_id"`
	RefreshExpiresAt time.Time    `json:"refresh_expires_at"`
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates an account and keeps its tokens.
func (c *Client) Register(ctx context.Context, email, password, displayName string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", registerRequest{Email: email, Password: password, DisplayName: displayName})
}

// Login signs in and keeps the returned tokens for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", loginRequest{Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{method: http.MethodPost, path: APIPrefix + path, body: body, anonymous: true}, &out)
	if err != nil {
		return nil, err
	}
	c.setTokens(out.AccessToken, out.RefreshToken)
	return &out, nil
}

// Refresh rotates the token pair.
func (c *Client) Refresh(ctx context.Context) (*AuthResponse, error) {
	_, refresh := c.Tokens()
	if refresh == "" {
		return nil, errors.New("no refresh token")
	}
	return c.authenticate(ctx, "/auth/refresh", refreshRequest{RefreshToken: refresh})
}

// refreshOnce refreshes unless another caller already replaced stale.
func (c *Client) refreshOnce(ctx context.Context, stale string) error {
	c.refreshing.Lock()
	defer c.refreshing.Unlock()

	if access, _ := c.Tokens(); access != stale {
		return nil
	}
	_, err := c.Refresh(ctx)
	if err == nil {
		c.logger.Debug("access token refreshed")
	}
	return err
}

// Logout revokes the session and forgets the tokens.
func (c *Client) Logout(ctx context.Context) error {
	_, refresh := c.Tokens()
	err := c.do(ctx, request{method: http.MethodPost, path: APIPrefix + "/auth/logout", body: refreshRequest{RefreshToken: refresh}}, nil)
	c.setTokens("", "")
	return err
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, request{method: http.MethodGet, path: APIPrefix + "/auth/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
