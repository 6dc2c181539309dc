// Package store defines the persistence interface for the journal server.
package store

import (
	"context"
	"time"

	"github.com/journalapp/journal-server/pkg/domain"
)

// Owner describes the ownership chain above a page or element.
type Owner struct {
	UserID     string
	NotebookID string
	PageID     string
}

// Store defines every persistence operation the services need.
// Get methods return soft-deleted rows too so callers can restore them;
// List methods never do.
type Store interface {
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Auth sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Notebooks
	CreateNotebook(ctx context.Context, nb *domain.Notebook) error
	GetNotebook(ctx context.Context, id string) (*domain.Notebook, error)
	ListNotebooks(ctx context.Context, userID string) ([]*domain.Notebook, error)
	UpdateNotebook(ctx context.Context, nb *domain.Notebook) error
	SoftDeleteNotebook(ctx context.Context, id string, at time.Time) error
	RestoreNotebook(ctx context.Context, id string) error

	// Pages
	CreatePage(ctx context.Context, page *domain.Page) error
	GetPage(ctx context.Context, id string) (*domain.Page, error)
	ListPages(ctx context.Context, notebookID string) ([]*domain.Page, error)
	UpdatePage(ctx context.Context, page *domain.Page) error
	SoftDeletePage(ctx context.Context, id string, at time.Time) error
	RestorePage(ctx context.Context, id string) error
	NextPageNumber(ctx context.Context, notebookID string) (int, error)
	PageOwner(ctx context.Context, pageID string) (*Owner, error)

	// Elements
	CreateElement(ctx context.Context, el *domain.PageElement) error
	GetElement(ctx context.Context, id string) (*domain.PageElement, error)
	ListElements(ctx context.Context, pageID string) ([]*domain.PageElement, error)
	UpdateElement(ctx context.Context, el *domain.PageElement) error
	UpdateElements(ctx context.Context, els []*domain.PageElement) error
	SoftDeleteElement(ctx context.Context, id string, at time.Time) error
	RestoreElement(ctx context.Context, id string) error
	MaxZIndex(ctx context.Context, pageID string) (int, error)
	ReorderElements(ctx context.Context, pageID string, ids []string) error
	ElementOwner(ctx context.Context, elementID string) (*Owner, error)

	// Media
	CreateMedia(ctx context.Context, m *domain.Media) error
	GetMedia(ctx context.Context, id string) (*domain.Media, error)
	ListMedia(ctx context.Context, userID string) ([]*domain.Media, error)
	DeleteMedia(ctx context.Context, id string) error
}
