package editor

import "sync"

// EventKind names a high-level editor event.
type EventKind string

// Event kinds.
const (
	EventLoad      EventKind = "load"
	EventSelect    EventKind = "select"
	EventDeselect  EventKind = "deselect"
	EventCreate    EventKind = "create"
	EventUpdate    EventKind = "update"
	EventMove      EventKind = "move"
	EventResize    EventKind = "resize"
	EventRotate    EventKind = "rotate"
	EventDelete    EventKind = "delete"
	EventDuplicate EventKind = "duplicate"
	EventRestore   EventKind = "restore"
)

// Event is delivered to subscribers after the store has changed.
// Element is a copy and may be nil for selection and delete events.
type Event struct {
	Kind      EventKind
	PageID    string
	ElementID string
	Element   *Element
	Selection []string
}

type emitter struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

func newEmitter() *emitter {
	return &emitter{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
func (e *emitter) Subscribe(fn func(Event)) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// emit calls subscribers synchronously. It must not be called with the
// store lock held.
func (e *emitter) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	e.mu.RLock()
	subs := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.RUnlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}
