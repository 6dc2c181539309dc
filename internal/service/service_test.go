package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/journalapp/journal-server/internal/auth"
	"github.com/journalapp/journal-server/internal/sse"
	"github.com/journalapp/journal-server/internal/store/sqlite"
	"github.com/journalapp/journal-server/pkg/domain"
)

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recordingEmitter) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	store     *sqlite.Store
	events    *recordingEmitter
	tokens    *auth.TokenService
	auth      *AuthService
	notebooks *NotebookService
	pages     *PageService
	elements  *ElementService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key, err := auth.LoadOrGenerateKey(filepath.Join(t.TempDir(), "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	events := &recordingEmitter{}
	sessions := NewSessionService(s, tokens, nil)

	return &fixture{
		store:     s,
		events:    events,
		tokens:    tokens,
		auth:      NewAuthService(s, tokens, sessions, nil),
		notebooks: NewNotebookService(s, events, nil),
		pages:     NewPageService(s, events, nil),
		elements:  NewElementService(s, nil, events, DefaultElementRules(), nil),
	}
}

var testClient = auth.ClientInfo{IPAddress: "203.0.113.7", UserAgent: "go-test"}

func (f *fixture) register(t *testing.T, email string) *domain.User {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), RegisterRequest{
		Email:       email,
		Password:    "correct horse battery",
		DisplayName: "Traveller",
	}, testClient)
	require.NoError(t, err)
	return resp.User
}

func (f *fixture) notebookWithPage(t *testing.T, userID string) (*domain.Notebook, *domain.Page) {
	t.Helper()
	ctx := context.Background()
	nb, err := f.notebooks.Create(ctx, userID, CreateNotebookRequest{Title: "Kyoto Spring"})
	require.NoError(t, err)
	page, err := f.pages.Create(ctx, userID, nb.ID, CreatePageRequest{Title: "Day one"})
	require.NoError(t, err)
	return nb, page
}

func textDraft(x, y float64) CreateElementRequest {
	return CreateElementRequest{
		Kind:    domain.KindText,
		X:       x,
		Y:       y,
		Width:   200,
		Height:  80,
		Content: domain.ElementContent{Text: &domain.TextContent{Text: "Tea at Ippodo", FontSize: 18}},
		Style:   domain.Style{"opacity": 0.9},
	}
}

func ptr[T any](v T) *T { return &v }
