package stickers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/journalapp/journal-server/pkg/domain"
)

// ErrNotFound is returned for unknown sticker ids and for stickers without a file.
var ErrNotFound = errors.New("sticker not found")

const (
	// reloadDelay lets a burst of file events settle before reloading.
	reloadDelay = 250 * time.Millisecond

	defaultSearchLimit = 50
)

// Options configures a Library.
type Options struct {
	// Dir holds stickers.toml and the sticker files. It may not exist.
	Dir string
	// Watch reloads the library when files in Dir change.
	Watch bool
	// FileURL builds the public URL of a file sticker. Defaults to /api/v1/stickers/{id}/file.
	FileURL func(id string) string
	Logger  *slog.Logger
}

// Library is the in-memory sticker catalog. Safe for concurrent use.
type Library struct {
	dir     string
	fileURL func(string) string
	logger  *slog.Logger

	mu         sync.RWMutex
	stickers   []domain.Sticker
	byID       map[string]domain.Sticker
	categories []domain.StickerCategory
	index      bleve.Index
	builtin    bool

	watcher *fsnotify.Watcher
	timerMu sync.Mutex
	timer   *time.Timer
	done    chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// New loads the library. A malformed manifest is an error here; later
// reloads keep the previous catalog instead.
func New(opts Options) (*Library, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fileURL := opts.FileURL
	if fileURL == nil {
		fileURL = func(id string) string { return "/api/v1/stickers/" + id + "/file" }
	}

	l := &Library{
		dir:     opts.Dir,
		fileURL: fileURL,
		logger:  logger,
		done:    make(chan struct{}),
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}

	if opts.Watch {
		if err := l.watch(); err != nil {
			logger.Warn("sticker hot reload disabled", "dir", opts.Dir, "error", err)
		}
	}
	return l, nil
}

// Reload re-reads the manifest and swaps in a new catalog and index.
func (l *Library) Reload() error {
	m, err := loadManifest(l.dir)
	builtin := false
	switch {
	case errors.Is(err, errNoManifest):
		m, builtin = &builtinManifest, true
	case err != nil:
		return err
	}

	cat := resolve(m, l.dir, func(msg string, args ...any) {
		l.logger.Warn(msg, args...)
	})
	for i := range cat.stickers {
		if cat.stickers[i].File != "" {
			cat.stickers[i].URL = l.fileURL(cat.stickers[i].ID)
		}
	}

	index, err := buildIndex(cat.stickers)
	if err != nil {
		return err
	}

	byID := make(map[string]domain.Sticker, len(cat.stickers))
	for _, s := range cat.stickers {
		byID[s.ID] = s
	}

	l.mu.Lock()
	old := l.index
	l.stickers = cat.stickers
	l.byID = byID
	l.categories = cat.categories
	l.index = index
	l.builtin = builtin
	l.mu.Unlock()

	if old != nil {
		old.Close()
	}

	l.logger.Info("sticker library loaded",
		"stickers", len(cat.stickers),
		"categories", len(cat.categories),
		"builtin", builtin,
	)
	return nil
}

// Builtin reports whether the built-in set is being served.
func (l *Library) Builtin() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.builtin
}

// List returns the stickers of category in manifest order, or all when category is empty.
func (l *Library) List(category string) []domain.Sticker {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Sticker, 0, len(l.stickers))
	for _, s := range l.stickers {
		if category == "" || s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// Categories returns the non-empty categories in manifest order.
func (l *Library) Categories() []domain.StickerCategory {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.StickerCategory(nil), l.categories...)
}

// Get returns one sticker.
func (l *Library) Get(id string) (domain.Sticker, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.byID[id]
	if !ok {
		return domain.Sticker{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return s, nil
}

// FilePath returns the filesystem path of a file sticker.
func (l *Library) FilePath(id string) (string, error) {
	s, err := l.Get(id)
	if err != nil {
		return "", err
	}
	if s.File == "" {
		return "", fmt.Errorf("%s has no file: %w", id, ErrNotFound)
	}
	return filepath.Join(l.dir, filepath.FromSlash(s.File)), nil
}

// Search returns stickers matching text, best first. An empty text lists the category.
func (l *Library) Search(ctx context.Context, text, category string, limit int) ([]domain.Sticker, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if domain.FoldForSearch(text) == "" {
		list := l.List(category)
		if len(list) > limit {
			list = list[:limit]
		}
		return list, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	ids, err := searchIDs(ctx, l.index, text, category, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Sticker, 0, len(ids))
	for _, id := range ids {
		if s, ok := l.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Close stops the watcher and releases the index. Later calls return the
// first call's result.
func (l *Library) Close() error {
	l.closeOnce.Do(func() { l.closeErr = l.close() })
	return l.closeErr
}

func (l *Library) close() error {
	close(l.done)

	var errs []error
	if l.watcher != nil {
		errs = append(errs, l.watcher.Close())
	}
	l.wg.Wait()

	l.timerMu.Lock()
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timerMu.Unlock()

	l.mu.Lock()
	if l.index != nil {
		errs = append(errs, l.index.Close())
		l.index = nil
	}
	l.mu.Unlock()
	return errors.Join(errs...)
}

func (l *Library) watch() error {
	if l.dir == "" {
		return errors.New("no sticker directory configured")
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create sticker directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := w.Add(l.dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", l.dir, err)
	}
	l.watcher = w

	l.wg.Add(1)
	go l.processEvents()
	return nil
}

func (l *Library) processEvents() {
	defer l.wg.Done()

	for {
		select {
		case <-l.done:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				l.scheduleReload()
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("sticker watcher error", "error", err)
		}
	}
}

// scheduleReload coalesces events into one reload after reloadDelay of quiet.
func (l *Library) scheduleReload() {
	l.timerMu.Lock()
	defer l.timerMu.Unlock()

	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(reloadDelay, func() {
		select {
		case <-l.done:
			return
		default:
		}
		if err := l.Reload(); err != nil {
			l.logger.Error("sticker reload failed, keeping previous library", "error", err)
		}
	})
}
