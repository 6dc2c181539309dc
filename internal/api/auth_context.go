package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/journalapp/journal-server/internal/auth"
	domainerrors "github.com/journalapp/journal-server/internal/errors"
	"github.com/journalapp/journal-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	userIDKey  ctxKey = "userID"
	authErrKey ctxKey = "authErr"
	clientKey  ctxKey = "client"
)

// GetUserID returns the authenticated user ID from context.
// An expired access token yields TOKEN_EXPIRED so clients know to refresh.
func GetUserID(ctx context.Context) (string, error) {
	if userID, ok := ctx.Value(userIDKey).(string); ok && userID != "" {
		return userID, nil
	}
	if err, ok := ctx.Value(authErrKey).(error); ok {
		return "", err
	}
	return "", domainerrors.Unauthorized("authentication required")
}

func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// clientFrom returns the caller's address and user agent recorded by authMiddleware.
func clientFrom(ctx context.Context) auth.ClientInfo {
	client, _ := ctx.Value(clientKey).(auth.ClientInfo)
	return client
}

// requestUser resolves the caller of a raw chi handler, such as the event stream.
func requestUser(r *http.Request) (string, bool) {
	userID, err := GetUserID(r.Context())
	return userID, err == nil
}

// authMiddleware validates the access token from the Authorization header or
// the access cookie and stores the user ID in context. Requests without a
// valid token continue anonymously; handlers use GetUserID to reject them.
func authMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), clientKey, auth.ClientInfo{
				IPAddress: clientIP(r),
				UserAgent: r.UserAgent(),
			})

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				if cookie, err := r.Cookie(AccessCookieName); err == nil {
					token = cookie.Value
				}
			}

			if token != "" {
				user, _, err := authService.VerifyAccessToken(ctx, token)
				if err != nil {
					ctx = context.WithValue(ctx, authErrKey, err)
				} else {
					ctx = setUserID(ctx, user.ID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// clientIP returns the request's remote address without port. chi's RealIP
// middleware has already applied X-Forwarded-For and X-Real-IP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
