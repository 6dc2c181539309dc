package editor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Store is the in-memory copy of the open page's elements and the only
// path through which they are mutated. Local changes are applied before
// the backend is called; a failed call is reported, never rolled back.
//
// Store is safe for concurrent use. Backend calls are made without the
// lock held.
type Store struct {
	backend Backend
	events  *emitter
	minSize float64
	logger  *slog.Logger

	mu         sync.RWMutex
	pageID     string
	generation uint64
	elements   []*Element // ascending z order
	selection  []string   // insertion order, last is primary
	revisions  map[string]uint64
}

// NewStore creates an empty store over backend.
func NewStore(backend Backend, opts Options) *Store {
	opts = opts.withDefaults()
	return &Store{
		backend:   backend,
		events:    newEmitter(),
		minSize:   opts.MinElementSize,
		logger:    opts.Logger,
		revisions: make(map[string]uint64),
	}
}

// Subscribe registers fn for store and controller events.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	return s.events.Subscribe(fn)
}

// Load replaces the collection with the elements of pageID and clears the
// selection.
func (s *Store) Load(ctx context.Context, pageID string) error {
	elements, err := s.backend.ListElements(ctx, pageID)
	if err != nil {
		return fmt.Errorf("load page %s: %w", pageID, err)
	}

	loaded := make([]*Element, 0, len(elements))
	for _, e := range elements {
		if e == nil || e.DeletedAt != nil {
			continue
		}
		loaded = append(loaded, e.Clone())
	}
	sortByZ(loaded)

	s.mu.Lock()
	s.pageID = pageID
	s.generation++
	s.elements = loaded
	s.selection = nil
	s.revisions = make(map[string]uint64)
	s.mu.Unlock()

	s.logger.Debug("page loaded", "page_id", pageID, "elements", len(loaded))
	s.events.emit(Event{Kind: EventLoad, PageID: pageID})
	return nil
}

// Reset drops the page, its elements and the selection.
func (s *Store) Reset() {
	s.mu.Lock()
	s.pageID = ""
	s.generation++
	s.elements = nil
	s.selection = nil
	s.revisions = make(map[string]uint64)
	s.mu.Unlock()
}

// PageID returns the loaded page, or "".
func (s *Store) PageID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageID
}

// Create validates draft, stores it through the backend and inserts the
// returned element. Nothing is inserted if the backend call fails.
func (s *Store) Create(ctx context.Context, draft Draft) (*Element, error) {
	s.mu.RLock()
	pageID, gen := s.pageID, s.generation
	s.mu.RUnlock()
	if pageID == "" {
		return nil, ErrNoPage
	}
	if err := s.validateDraft(draft); err != nil {
		return nil, err
	}

	created, err := s.backend.CreateElement(ctx, pageID, draft)
	if err != nil {
		return nil, fmt.Errorf("create element: %w", err)
	}

	if !s.insert(gen, created) {
		return created.Clone(), nil
	}
	s.events.emit(Event{Kind: EventCreate, PageID: pageID, ElementID: created.ID, Element: created.Clone()})
	return created.Clone(), nil
}

// Update applies patch locally, then sends it to the backend. On failure
// the local change stays in place and the error is returned.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*Element, error) {
	if _, err := s.applyLocal(id, patch, EventUpdate); err != nil {
		return nil, err
	}
	return s.Save(ctx, id, patch)
}

// ApplyLocal applies patch in memory only.
func (s *Store) ApplyLocal(id string, patch Patch) (*Element, error) {
	return s.applyLocal(id, patch, EventUpdate)
}

func (s *Store) applyLocal(id string, patch Patch, kind EventKind) (*Element, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("element %s: %w", id, ErrNotFound)
	}

	next := s.elements[i].Clone()
	patch.Apply(next)
	if err := s.validateElement(next); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.elements[i] = next
	s.revisions[id]++
	if patch.ZIndex != nil {
		sortByZ(s.elements)
	}
	pageID := s.pageID
	out := next.Clone()
	s.mu.Unlock()

	s.events.emit(Event{Kind: kind, PageID: pageID, ElementID: id, Element: out.Clone()})
	return out, nil
}

// Save sends patch to the backend without touching local state first.
// The server copy replaces the local one unless the element changed
// locally while the request was in flight.
func (s *Store) Save(ctx context.Context, id string, patch Patch) (*Element, error) {
	s.mu.RLock()
	gen, rev := s.generation, s.revisions[id]
	s.mu.RUnlock()

	saved, err := s.backend.UpdateElement(ctx, id, patch)
	if err != nil {
		s.handleFailure(id, err)
		return nil, fmt.Errorf("update element %s: %w", id, err)
	}

	s.mu.Lock()
	if s.generation != gen || s.revisions[id] != rev {
		s.mu.Unlock()
		return saved.Clone(), nil
	}
	if i := s.indexOf(id); i >= 0 {
		s.elements[i] = saved.Clone()
		sortByZ(s.elements)
	}
	s.mu.Unlock()

	return saved.Clone(), nil
}

// reconcile installs server copies returned by a batch save.
func (s *Store) reconcile(gen uint64, revs map[string]uint64, saved []*Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	for _, e := range saved {
		if e == nil || s.revisions[e.ID] != revs[e.ID] {
			continue
		}
		if i := s.indexOf(e.ID); i >= 0 {
			s.elements[i] = e.Clone()
		}
	}
	sortByZ(s.elements)
}

// Delete removes the element locally and soft-deletes it on the backend.
// The local removal is kept when the backend call fails.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("element %s: %w", id, ErrNotFound)
	}
	s.elements = slices.Delete(s.elements, i, i+1)
	s.selection = slices.DeleteFunc(s.selection, func(sel string) bool { return sel == id })
	delete(s.revisions, id)
	pageID := s.pageID
	s.mu.Unlock()

	s.events.emit(Event{Kind: EventDelete, PageID: pageID, ElementID: id})

	if err := s.backend.DeleteElement(ctx, id); err != nil {
		return fmt.Errorf("delete element %s: %w", id, err)
	}
	return nil
}

// Duplicate asks the backend for a copy of id shifted by offset (nil means
// the backend default) and inserts it.
func (s *Store) Duplicate(ctx context.Context, id string, offset *Offset) (*Element, error) {
	s.mu.RLock()
	gen, pageID, exists := s.generation, s.pageID, s.indexOf(id) >= 0
	s.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("element %s: %w", id, ErrNotFound)
	}

	dup, err := s.backend.DuplicateElement(ctx, id, offset)
	if err != nil {
		s.handleFailure(id, err)
		return nil, fmt.Errorf("duplicate element %s: %w", id, err)
	}

	if s.insert(gen, dup) {
		s.events.emit(Event{Kind: EventDuplicate, PageID: pageID, ElementID: dup.ID, Element: dup.Clone()})
	}
	return dup.Clone(), nil
}

// Restore undeletes id on the backend and puts it back on the page.
func (s *Store) Restore(ctx context.Context, id string) (*Element, error) {
	s.mu.RLock()
	gen, pageID := s.generation, s.pageID
	s.mu.RUnlock()

	restored, err := s.backend.RestoreElement(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("restore element %s: %w", id, err)
	}

	if restored.PageID == pageID && s.insert(gen, restored) {
		s.events.emit(Event{Kind: EventRestore, PageID: pageID, ElementID: id, Element: restored.Clone()})
	}
	return restored.Clone(), nil
}

// BringToFront moves id above every other element.
func (s *Store) BringToFront(ctx context.Context, id string) (*Element, error) {
	return s.restack(ctx, id, true)
}

// SendToBack moves id below every other element.
func (s *Store) SendToBack(ctx context.Context, id string) (*Element, error) {
	return s.restack(ctx, id, false)
}

func (s *Store) restack(ctx context.Context, id string, front bool) (*Element, error) {
	s.mu.RLock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.RUnlock()
		return nil, fmt.Errorf("element %s: %w", id, ErrNotFound)
	}
	current := s.elements[i].ZIndex
	target, others := current, 0
	for _, e := range s.elements {
		if e.ID == id {
			continue
		}
		others++
		if front && e.ZIndex >= target {
			target = e.ZIndex + 1
		}
		if !front && e.ZIndex <= target {
			target = e.ZIndex - 1
		}
	}
	el := s.elements[i].Clone()
	s.mu.RUnlock()

	if others == 0 || target == current {
		return el, nil
	}
	return s.Update(ctx, id, Patch{ZIndex: &target})
}

// Select makes id the primary selection. With additive the previous
// selection is kept.
func (s *Store) Select(id string, additive bool) error {
	s.mu.Lock()
	if s.indexOf(id) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("element %s: %w", id, ErrNotFound)
	}
	if additive {
		s.selection = slices.DeleteFunc(s.selection, func(sel string) bool { return sel == id })
		s.selection = append(s.selection, id)
	} else {
		s.selection = []string{id}
	}
	ev := Event{Kind: EventSelect, PageID: s.pageID, ElementID: id, Selection: slices.Clone(s.selection)}
	s.mu.Unlock()

	s.events.emit(ev)
	return nil
}

// SelectAll selects every element in z order and returns how many.
func (s *Store) SelectAll() int {
	s.mu.Lock()
	if len(s.elements) == 0 {
		s.mu.Unlock()
		return 0
	}
	s.selection = make([]string, len(s.elements))
	for i, e := range s.elements {
		s.selection[i] = e.ID
	}
	ev := Event{Kind: EventSelect, PageID: s.pageID, Selection: slices.Clone(s.selection)}
	n := len(s.selection)
	s.mu.Unlock()

	s.events.emit(ev)
	return n
}

// DeselectAll clears the selection.
func (s *Store) DeselectAll() {
	s.mu.Lock()
	if len(s.selection) == 0 {
		s.mu.Unlock()
		return
	}
	s.selection = nil
	pageID := s.pageID
	s.mu.Unlock()

	s.events.emit(Event{Kind: EventDeselect, PageID: pageID})
}

// Selection returns the selected ids, primary last.
func (s *Store) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.selection)
}

// Primary returns the most recently selected id.
func (s *Store) Primary() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.selection) == 0 {
		return "", false
	}
	return s.selection[len(s.selection)-1], true
}

// Count returns the number of elements on the page.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

// ElementByID returns a copy of the element.
func (s *Store) ElementByID(id string) (*Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return s.elements[i].Clone(), true
}

// Elements returns copies of all elements in ascending z order.
func (s *Store) Elements() []*Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Element, len(s.elements))
	for i, e := range s.elements {
		out[i] = e.Clone()
	}
	return out
}

func (s *Store) snapshot() (gen uint64, revs map[string]uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	revs = make(map[string]uint64, len(s.revisions))
	for id, r := range s.revisions {
		revs[id] = r
	}
	return s.generation, revs
}

// insert adds e unless the page changed since gen. Existing copies are replaced.
func (s *Store) insert(gen uint64, e *Element) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || e.PageID != s.pageID {
		return false
	}
	if i := s.indexOf(e.ID); i >= 0 {
		s.elements[i] = e.Clone()
	} else {
		s.elements = append(s.elements, e.Clone())
	}
	sortByZ(s.elements)
	return true
}

// handleFailure forgets an element the backend no longer has.
func (s *Store) handleFailure(id string, err error) {
	if !errors.Is(err, ErrNotFound) {
		return
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		s.elements = slices.Delete(s.elements, i, i+1)
	}
	s.selection = slices.DeleteFunc(s.selection, func(sel string) bool { return sel == id })
	delete(s.revisions, id)
	pageID := s.pageID
	s.mu.Unlock()

	s.logger.Info("element gone on server", "element_id", id)
	if i >= 0 {
		s.events.emit(Event{Kind: EventDelete, PageID: pageID, ElementID: id})
	}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.elements, func(e *Element) bool { return e.ID == id })
}

func (s *Store) validateDraft(d Draft) error {
	if !d.Kind.Valid() {
		return invalid("kind", "unknown element kind %q", d.Kind)
	}
	if d.Content.Kind() != d.Kind {
		return invalid("content", "content must hold exactly one %s payload", d.Kind)
	}
	return s.validateGeometry(d.Geometry)
}

func (s *Store) validateElement(e *Element) error {
	return s.validateGeometry(e.Geometry)
}

func (s *Store) validateGeometry(g Geometry) error {
	if !g.Finite() {
		return invalid("geometry", "coordinates must be finite")
	}
	if g.Width < s.minSize {
		return invalid("width", "must be at least %g", s.minSize)
	}
	if g.Height < s.minSize {
		return invalid("height", "must be at least %g", s.minSize)
	}
	return nil
}

func sortByZ(elements []*Element) {
	slices.SortStableFunc(elements, func(a, b *Element) int {
		return cmp.Compare(a.ZIndex, b.ZIndex)
	})
}
