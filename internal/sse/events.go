// Package sse pushes journal changes to connected editors over Server-Sent Events.
package sse

import (
	"time"

	"github.com/journalapp/journal-server/pkg/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventHeartbeat keeps idle connections open through proxies.
	EventHeartbeat EventType = "heartbeat"

	EventNotebookCreated EventType = "notebook.created"
	EventNotebookUpdated EventType = "notebook.updated"
	EventNotebookDeleted EventType = "notebook.deleted"

	EventPageCreated EventType = "page.created"
	EventPageUpdated EventType = "page.updated"
	EventPageDeleted EventType = "page.deleted"

	EventElementCreated    EventType = "element.created"
	EventElementUpdated    EventType = "element.updated"
	EventElementDeleted    EventType = "element.deleted"
	EventElementRestored   EventType = "element.restored"
	EventElementsReordered EventType = "elements.reordered"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID scopes delivery to one account. Empty means every client.
	UserID string `json:"-"`
	// PageID lets clients subscribed to a single page skip other pages' events.
	PageID string `json:"page_id,omitempty"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// ElementEventData carries the element after the change.
type ElementEventData struct {
	Element *domain.PageElement `json:"element"`
}

// ElementDeletedEventData identifies a removed element.
type ElementDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	ElementID string    `json:"element_id"`
}

// ElementsReorderedEventData lists a page's element ids bottom to top.
type ElementsReorderedEventData struct {
	ElementIDs []string `json:"element_ids"`
}

// PageEventData carries a page after the change.
type PageEventData struct {
	Page *domain.Page `json:"page"`
}

// NotebookEventData carries a notebook after the change.
type NotebookEventData struct {
	Notebook *domain.Notebook `json:"notebook"`
}

// DeletedEventData identifies a removed page or notebook.
type DeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	ID        string    `json:"id"`
}

func newEvent(t EventType, userID, pageID string, data any) Event {
	return Event{
		Type:      t,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		PageID:    pageID,
		Data:      data,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, "", "", HeartbeatEventData{ServerTime: time.Now().UTC()})
}

// NewElementEvent creates a created, updated or restored event for el.
func NewElementEvent(t EventType, userID string, el *domain.PageElement) Event {
	return newEvent(t, userID, el.PageID, ElementEventData{Element: el})
}

// NewElementDeletedEvent creates an element deletion event.
func NewElementDeletedEvent(userID, pageID, elementID string, at time.Time) Event {
	return newEvent(EventElementDeleted, userID, pageID, ElementDeletedEventData{DeletedAt: at, ElementID: elementID})
}

// NewElementsReorderedEvent creates a reorder event.
func NewElementsReorderedEvent(userID, pageID string, ids []string) Event {
	return newEvent(EventElementsReordered, userID, pageID, ElementsReorderedEventData{ElementIDs: ids})
}

// NewPageEvent creates a page created or updated event.
func NewPageEvent(t EventType, userID string, page *domain.Page) Event {
	return newEvent(t, userID, page.ID, PageEventData{Page: page})
}

// NewNotebookEvent creates a notebook created or updated event.
func NewNotebookEvent(t EventType, userID string, nb *domain.Notebook) Event {
	return newEvent(t, userID, "", NotebookEventData{Notebook: nb})
}

// NewDeletedEvent creates a page or notebook deletion event.
func NewDeletedEvent(t EventType, userID, pageID, id string, at time.Time) Event {
	return newEvent(t, userID, pageID, DeletedEventData{DeletedAt: at, ID: id})
}
