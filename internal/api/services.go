package api

import (
	"github.com/journalapp/journal-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth     *service.AuthService
	Notebook *service.NotebookService
	Page     *service.PageService
	Element  *service.ElementService
	Media    *service.MediaService   // nil disables the media routes
	Sticker  *service.StickerService // nil disables the sticker routes
	Settings *service.SettingsService
}

// CookieConfig controls the attributes of the session cookies.
type CookieConfig struct {
	Secure bool
	Domain string
}

// Options configures the HTTP surface.
type Options struct {
	Version        string
	AllowedOrigins []string
	Cookies        CookieConfig
	// LoginRate is the number of login/register attempts allowed per IP per minute.
	LoginRate  int
	LoginBurst int
	// MaxBodyBytes caps JSON request bodies. Zero keeps the huma default.
	MaxBodyBytes int64
}
