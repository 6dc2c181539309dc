package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/journalapp/journal-server/internal/errors"
	"github.com/journalapp/journal-server/internal/service"
	"github.com/journalapp/journal-server/pkg/domain"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/v1/auth/register",
		Summary:       "Register new user",
		Description:   "Creates an account and signs it in. Rate limited per client address.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns access and refresh tokens. Rate limited per client address.",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges the refresh token (cookie or body) for a new token pair",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Ends the session and clears the session cookies",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/me",
		Summary:     "Current user",
		Description: "Returns the authenticated user. An expired access token yields TOKEN_EXPIRED.",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}, {"cookie": {}}},
	}, s.handleMe)
}

// === DTOs ===

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email       string `json:"email" doc:"User email address"`
	Password    string `json:"password" doc:"Password, at least 8 characters"`
	DisplayName string `json:"display_name,omitempty" doc:"Name shown in the journal"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" doc:"User email"`
	Password string `json:"password" doc:"User password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// RefreshRequest carries a refresh token for clients that do not use cookies.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty" doc:"Refresh token"`
}

// RefreshInput wraps the refresh request for Huma.
type RefreshInput struct {
	RefreshCookie string          `cookie:"journal_refresh"`
	Body          *RefreshRequest `required:"false"`
}

// token prefers the explicit body over the cookie.
func (in *RefreshInput) token() string {
	if in.Body != nil && in.Body.RefreshToken != "" {
		return in.Body.RefreshToken
	}
	return in.RefreshCookie
}

// AuthOutput wraps the auth response for Huma and sets the session cookies.
type AuthOutput struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      service.AuthResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// LogoutOutput clears the session cookies.
type LogoutOutput struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      MessageResponse
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body *domain.User
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	client := clientFrom(ctx)
	if !s.authRateLimiter.Allow(client.IPAddress) {
		s.logger.Warn("Rate limit exceeded", "ip", client.IPAddress, "operation", "register")
		return nil, domainerrors.RateLimited("too many attempts, try again later")
	}

	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
	}, client)
	if err != nil {
		return nil, err
	}

	return &AuthOutput{SetCookie: s.sessionCookies(&resp.SessionResponse), Body: *resp}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	client := clientFrom(ctx)
	if !s.authRateLimiter.Allow(client.IPAddress) {
		s.logger.Warn("Rate limit exceeded", "ip", client.IPAddress, "operation", "login")
		return nil, domainerrors.RateLimited("too many attempts, try again later")
	}

	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	}, client)
	if err != nil {
		return nil, err
	}

	return &AuthOutput{SetCookie: s.sessionCookies(&resp.SessionResponse), Body: *resp}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Refresh(ctx, input.token(), clientFrom(ctx))
	if err != nil {
		return nil, err
	}

	return &AuthOutput{SetCookie: s.sessionCookies(&resp.SessionResponse), Body: *resp}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *RefreshInput) (*LogoutOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.token()); err != nil {
		return nil, err
	}

	return &LogoutOutput{
		SetCookie: s.clearedCookies(),
		Body:      MessageResponse{Message: "Logged out successfully"},
	}, nil
}

func (s *Server) handleMe(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: user}, nil
}

// === Helpers ===

func (s *Server) sessionCookies(session *service.SessionResponse) []http.Cookie {
	return []http.Cookie{
		{
			Name:     AccessCookieName,
			Value:    session.AccessToken,
			Path:     "/",
			Domain:   s.opts.Cookies.Domain,
			MaxAge:   session.ExpiresIn,
			HttpOnly: true,
			Secure:   s.opts.Cookies.Secure,
			SameSite: http.SameSiteLaxMode,
		},
		{
			Name:     RefreshCookieName,
			Value:    session.RefreshToken,
			Path:     refreshCookiePath,
			Domain:   s.opts.Cookies.Domain,
			MaxAge:   int(time.Until(session.RefreshExpiresAt).Seconds()),
			HttpOnly: true,
			Secure:   s.opts.Cookies.Secure,
			SameSite: http.SameSiteStrictMode,
		},
	}
}

func (s *Server) clearedCookies() []http.Cookie {
	return []http.Cookie{
		{Name: AccessCookieName, Path: "/", Domain: s.opts.Cookies.Domain, MaxAge: -1, HttpOnly: true, Secure: s.opts.Cookies.Secure},
		{Name: RefreshCookieName, Path: refreshCookiePath, Domain: s.opts.Cookies.Domain, MaxAge: -1, HttpOnly: true, Secure: s.opts.Cookies.Secure},
	}
}
