// Package api provides the HTTP API server and handlers for the journal backend.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/journalapp/journal-server/internal/ratelimit"
	"github.com/journalapp/journal-server/internal/sse"
	"github.com/journalapp/journal-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	sseManager      *sse.Manager
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
	opts            Options
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, sseManager *sse.Manager, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.LoginRate <= 0 {
		opts.LoginRate = 5
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = opts.LoginRate
	}

	router := chi.NewRouter()

	// chi requires middleware before any route, and humachi.New registers the docs routes.
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("Journal API", opts.Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
		"cookie": {
			Type: "apiKey",
			In:   "cookie",
			Name: AccessCookieName,
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler(logger)

	s := &Server{
		store:           st,
		services:        services,
		sseManager:      sseManager,
		router:          router,
		api:             api,
		logger:          logger,
		authRateLimiter: ratelimit.PerMinute(opts.LoginRate, opts.LoginBurst),
		opts:            opts,
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerNotebookRoutes()
	s.registerPageRoutes()
	s.registerElementRoutes()
	if services.Media != nil {
		s.registerMediaRoutes()
	}
	if services.Sticker != nil {
		s.registerStickerRoutes()
	}
	if sseManager != nil {
		s.router.Get("/api/v1/events", sse.NewHandler(sseManager, requestUser, logger.With("component", "sse")).ServeHTTP)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources owned by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// maxBodyBytes returns the configured JSON body cap for write-heavy operations.
func (s *Server) maxBodyBytes() int64 {
	return s.opts.MaxBodyBytes
}
