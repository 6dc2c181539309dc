// Package editor is the editing session behind the page canvas: an
// optimistic element store, a bounded undo/redo history of interactive
// geometry edits, and a controller that turns key and pointer events into
// store mutations with frame throttling and debounced persistence.
//
// Local state is authoritative for display and the backend is the system
// of record. A failed save leaves the local change in place; the user
// reverts with undo or retries.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Session owns the editing state of one open page.
type Session struct {
	Store      *Store
	History    *History
	Controller *Controller

	backend   Backend
	debouncer *Debouncer
	logger    *slog.Logger
	cancel    context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewSession creates a session over backend. Call Open to load a page and
// Close when the editor goes away.
func NewSession(backend Backend, opts Options) *Session {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		backend: backend,
		logger:  opts.Logger,
		cancel:  cancel,
	}
	s.Store = NewStore(backend, opts)
	s.History = NewHistory(s.Store, opts.HistoryCapacity)
	s.debouncer = NewDebouncer(ctx, opts.Clock, opts.DebounceWindow, s.persist, nil)
	s.Controller = NewController(ctx, s.Store, s.History, s.debouncer, opts)
	s.debouncer.onError = func(_ string, err error) {
		s.Controller.reportError("save", err)
	}
	return s
}

// Subscribe registers fn for editor events. fn runs synchronously; move,
// resize and rotate frames must not end the gesture from inside fn.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	return s.Store.Subscribe(fn)
}

// Open loads pageID. Saves pending for the previous page are flushed
// first; selection and history start empty.
func (s *Session) Open(ctx context.Context, pageID string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errors.New("editor session closed")
	}

	s.Controller.Cancel()
	if prev := s.Store.PageID(); prev != "" && s.debouncer.Len() > 0 {
		if err := s.FlushPending(ctx); err != nil {
			s.logger.Warn("flush before page switch", "page_id", prev, "error", err)
		}
	}

	s.History.Reset()
	if err := s.Store.Load(ctx, pageID); err != nil {
		return err
	}
	s.History.Reset()
	return nil
}

// Close stops timers, drops pending saves and clears the session.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.Controller.stop()
	s.debouncer.Stop()
	s.cancel()
	s.History.Reset()
	s.Store.Reset()
}

// PendingSaves returns the number of debounced saves waiting to fire.
func (s *Session) PendingSaves() int {
	return s.debouncer.Len()
}

// FlushPending saves every debounced change now. Several pending elements
// go out as one batch when the backend supports it. It can be used as the
// force-save hook.
func (s *Session) FlushPending(ctx context.Context) error {
	drained := s.debouncer.Drain()
	if len(drained) == 0 {
		return nil
	}

	ids := slices.Sorted(maps.Keys(drained))
	if saver, ok := s.backend.(BatchSaver); ok && len(ids) > 1 {
		return s.saveBatch(ctx, saver, ids, drained)
	}

	var errs []error
	for _, id := range ids {
		if err := s.persist(ctx, id, drained[id]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) saveBatch(ctx context.Context, saver BatchSaver, ids []string, drained map[string]Patch) error {
	pageID := s.Store.PageID()
	gen, revs := s.Store.snapshot()

	items := make([]BatchItem, 0, len(ids))
	for _, id := range ids {
		el, ok := s.Store.ElementByID(id)
		if !ok {
			continue
		}
		items = append(items, BatchItem{ID: id, Patch: refreshPatch(drained[id], el)})
	}
	if len(items) == 0 {
		return nil
	}

	saved, err := saver.SaveElements(ctx, pageID, items)
	if err != nil {
		return fmt.Errorf("save %d elements: %w", len(items), err)
	}
	s.Store.reconcile(gen, revs, saved)
	return nil
}

// persist sends the current values of the fields named by patch.
func (s *Session) persist(ctx context.Context, id string, patch Patch) error {
	el, ok := s.Store.ElementByID(id)
	if !ok {
		return nil
	}
	_, err := s.Store.Save(ctx, id, refreshPatch(patch, el))
	return err
}
