package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/journalapp/journal-server/internal/service"
	"github.com/journalapp/journal-server/internal/store"
)

// healthProbeID never matches a real user; a not-found answer proves the database responds.
const healthProbeID = "health-probe"

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEditorSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/editor/settings",
		Summary:     "Editor settings",
		Description: "Returns the editing defaults clients should use",
		Tags:        []string{"Editor"},
	}, s.handleEditorSettings)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Version    string                     `json:"version" doc:"Server version"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

// EditorSettingsOutput wraps the editor settings for Huma.
type EditorSettingsOutput struct {
	Body service.EditorSettings
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"database": s.checkDatabase(ctx),
		"sse":      s.checkSSEManager(),
		"stickers": s.checkStickers(),
	}

	overall := "healthy"
	for _, c := range components {
		switch c.Status {
		case "unhealthy":
			overall = "unhealthy"
		case "degraded":
			if overall == "healthy" {
				overall = "degraded"
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Version:    s.opts.Version,
			Components: components,
		},
	}, nil
}

func (s *Server) handleEditorSettings(_ context.Context, _ *struct{}) (*EditorSettingsOutput, error) {
	return &EditorSettingsOutput{Body: s.services.Settings.Editor()}, nil
}

// checkDatabase verifies the database answers a point read.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "database not configured",
		}
	}

	start := time.Now()
	_, err := s.store.GetUser(ctx, healthProbeID)
	latency := time.Since(start)

	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("Health check database read failed", "error", err)
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "database read failed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

func (s *Server) checkSSEManager() ComponentHealth {
	if s.sseManager == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "SSE manager not configured",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Message: formatSSEStatus(s.sseManager.ClientCount()),
	}
}

// checkStickers reports a missing library as degraded: editing still works without it.
func (s *Server) checkStickers() ComponentHealth {
	if s.services.Sticker == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "sticker library not configured",
		}
	}

	count := 0
	for _, c := range s.services.Sticker.Categories() {
		count += c.Count
	}
	return ComponentHealth{
		Status:  "healthy",
		Message: strconv.Itoa(count) + " stickers",
	}
}

func formatSSEStatus(count int) string {
	switch count {
	case 0:
		return "no connected clients"
	case 1:
		return "1 connected client"
	default:
		return strconv.Itoa(count) + " connected clients"
	}
}
