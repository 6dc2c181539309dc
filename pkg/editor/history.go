package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultHistoryCapacity is the number of undo entries kept.
const DefaultHistoryCapacity = 50

// Operation labels a history entry.
type Operation string

// Interactive operations recorded by the history.
const (
	OpDrag   Operation = "drag"
	OpResize Operation = "resize"
	OpRotate Operation = "rotate"
)

// HistoryState is Idle or Capturing.
type HistoryState int

// History states.
const (
	StateIdle HistoryState = iota
	StateCapturing
)

// Entry is an immutable geometry snapshot of one element.
type Entry struct {
	ElementID string
	Op        Operation
	Geometry  Geometry
}

// History records geometry snapshots of interactive edits for undo and
// redo. Creation, deletion, duplication and keyboard nudges are never
// recorded.
type History struct {
	store    *Store
	capacity int

	mu      sync.Mutex
	undo    []Entry
	redo    []Entry
	pending *Entry
}

// NewHistory creates a history over store. A capacity <= 0 uses
// DefaultHistoryCapacity.
func NewHistory(store *Store, capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{store: store, capacity: capacity}
}

// Capacity returns the maximum undo depth.
func (h *History) Capacity() int { return h.capacity }

// State reports whether a snapshot is being captured.
func (h *History) State() HistoryState {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending != nil {
		return StateCapturing
	}
	return StateIdle
}

// Begin snapshots id at the start of an interactive operation. A capture
// already in progress is discarded.
func (h *History) Begin(id string, op Operation) error {
	el, ok := h.store.ElementByID(id)
	if !ok {
		return fmt.Errorf("element %s: %w", id, ErrNotFound)
	}

	h.mu.Lock()
	h.pending = &Entry{ElementID: id, Op: op, Geometry: el.Geometry}
	h.mu.Unlock()
	return nil
}

// Commit pushes the captured snapshot and clears the redo stack. Nothing is
// recorded when the element did not change or has disappeared. It reports
// whether an entry was added.
func (h *History) Commit() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := h.pending
	h.pending = nil
	if entry == nil {
		return false
	}

	el, ok := h.store.ElementByID(entry.ElementID)
	if !ok || sameGeometry(el.Geometry, entry.Geometry) {
		return false
	}

	h.push(&h.undo, *entry)
	h.redo = nil
	return true
}

// Cancel abandons the capture and returns the snapshot so the caller can
// revert to it.
func (h *History) Cancel() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry := h.pending
	h.pending = nil
	if entry == nil {
		return Entry{}, false
	}
	return *entry, true
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Len returns the sizes of the undo and redo stacks.
func (h *History) Len() (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo), len(h.redo)
}

// Undo restores the most recent snapshot and moves the pre-undo geometry
// onto the redo stack.
func (h *History) Undo(ctx context.Context) (*Element, error) {
	return h.step(ctx, true)
}

// Redo re-applies the most recently undone snapshot.
func (h *History) Redo(ctx context.Context) (*Element, error) {
	return h.step(ctx, false)
}

func (h *History) step(ctx context.Context, undo bool) (*Element, error) {
	h.mu.Lock()
	if h.pending != nil {
		h.mu.Unlock()
		return nil, ErrGestureActive
	}

	from, to := &h.undo, &h.redo
	empty := ErrNothingToUndo
	if !undo {
		from, to = &h.redo, &h.undo
		empty = ErrNothingToRedo
	}
	if len(*from) == 0 {
		h.mu.Unlock()
		return nil, empty
	}

	entry := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]

	current, ok := h.store.ElementByID(entry.ElementID)
	if !ok {
		h.mu.Unlock()
		return nil, fmt.Errorf("element %s: %w", entry.ElementID, ErrElementGone)
	}
	h.push(to, Entry{ElementID: entry.ElementID, Op: entry.Op, Geometry: current.Geometry})
	h.mu.Unlock()

	el, err := h.store.Update(ctx, entry.ElementID, geometryPatch(entry.Geometry))
	if errors.Is(err, ErrNotFound) {
		h.drop(entry.ElementID)
		return nil, fmt.Errorf("element %s: %w", entry.ElementID, ErrElementGone)
	}
	if err != nil {
		// The local geometry is restored even when the save failed.
		if restored, ok := h.store.ElementByID(entry.ElementID); ok {
			return restored, err
		}
		return nil, err
	}
	return el, nil
}

// Reset clears both stacks and any capture.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo, h.redo, h.pending = nil, nil, nil
}

// drop removes every entry for id.
func (h *History) drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	keep := func(stack []Entry) []Entry {
		out := stack[:0]
		for _, e := range stack {
			if e.ElementID != id {
				out = append(out, e)
			}
		}
		return out
	}
	h.undo = keep(h.undo)
	h.redo = keep(h.redo)
}

func (h *History) push(stack *[]Entry, e Entry) {
	*stack = append(*stack, e)
	if over := len(*stack) - h.capacity; over > 0 {
		*stack = append((*stack)[:0], (*stack)[over:]...)
	}
}
