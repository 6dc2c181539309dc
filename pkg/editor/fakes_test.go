package editor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/journalapp/journal-server/pkg/domain"
)

// manualClock fires timers only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs every timer that came due, in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due []*manualTimer
		var rest []*manualTimer
		for _, t := range c.timers {
			switch {
			case t.stopped || t.fired:
			case !t.at.After(c.now):
				due = append(due, t)
			default:
				rest = append(rest, t)
			}
		}
		c.timers = rest
		sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
		for _, t := range due {
			t.fired = true
		}
		c.mu.Unlock()

		if len(due) == 0 {
			return
		}
		for _, t := range due {
			t.f()
		}
	}
}

type updateCall struct {
	ID    string
	Patch Patch
}

// fakeBackend is an in-memory element API.
type fakeBackend struct {
	mu       sync.Mutex
	elements map[string]*Element
	nextID   int

	updates    []updateCall
	deletes    []string
	duplicates []string
	creates    int
	batches    [][]BatchItem

	failUpdate    error
	failDelete    error
	failCreate    error
	failDuplicate error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{elements: make(map[string]*Element)}
}

func (b *fakeBackend) add(pageID string, g Geometry, z int) *Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	el := &Element{
		PageID:   pageID,
		Kind:     "text",
		Geometry: g,
		ZIndex:   z,
		Content:  Content{Text: &domain.TextContent{Text: fmt.Sprintf("note %d", b.nextID)}},
		Style:    Style{"color": "#333"},
	}
	el.ID = fmt.Sprintf("el-%d", b.nextID)
	b.elements[el.ID] = el
	return el.Clone()
}

func (b *fakeBackend) updateCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.updates)
}

func (b *fakeBackend) lastUpdate(t *testing.T) updateCall {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.updates)
	return b.updates[len(b.updates)-1]
}

func (b *fakeBackend) stored(id string) *Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.elements[id]; ok {
		return el.Clone()
	}
	return nil
}

func (b *fakeBackend) ListElements(_ context.Context, pageID string) ([]*Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*Element
	for _, el := range b.elements {
		if el.PageID == pageID && el.DeletedAt == nil {
			out = append(out, el.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (b *fakeBackend) CreateElement(_ context.Context, pageID string, d Draft) (*Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.creates++
	if b.failCreate != nil {
		return nil, b.failCreate
	}
	b.nextID++
	el := &Element{PageID: pageID, Kind: d.Kind, Geometry: d.Geometry, Content: d.Content.Clone(), Style: d.Style}
	el.ID = fmt.Sprintf("el-%d", b.nextID)
	el.ZIndex = b.maxZ(pageID) + 1
	if d.ZIndex != nil {
		el.ZIndex = *d.ZIndex
	}
	b.elements[el.ID] = el
	return el.Clone(), nil
}

func (b *fakeBackend) UpdateElement(_ context.Context, id string, p Patch) (*Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, updateCall{ID: id, Patch: p})
	if b.failUpdate != nil {
		return nil, b.failUpdate
	}
	el, ok := b.elements[id]
	if !ok || el.DeletedAt != nil {
		return nil, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	p.Apply(el)
	return el.Clone(), nil
}

func (b *fakeBackend) DeleteElement(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, id)
	if b.failDelete != nil {
		return b.failDelete
	}
	el, ok := b.elements[id]
	if !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	now := time.Now()
	el.DeletedAt = &now
	return nil
}

func (b *fakeBackend) DuplicateElement(_ context.Context, id string, offset *Offset) (*Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.duplicates = append(b.duplicates, id)
	if b.failDuplicate != nil {
		return nil, b.failDuplicate
	}
	src, ok := b.elements[id]
	if !ok || src.DeletedAt != nil {
		return nil, fmt.Errorf("duplicate %s: %w", id, ErrNotFound)
	}
	dx, dy := 20.0, 20.0
	if offset != nil {
		dx, dy = offset.X, offset.Y
	}
	dup := src.Duplicate(dx, dy)
	b.nextID++
	dup.ID = fmt.Sprintf("el-%d", b.nextID)
	dup.ZIndex = b.maxZ(src.PageID) + 1
	b.elements[dup.ID] = dup
	return dup.Clone(), nil
}

func (b *fakeBackend) RestoreElement(_ context.Context, id string) (*Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	el, ok := b.elements[id]
	if !ok {
		return nil, fmt.Errorf("restore %s: %w", id, ErrNotFound)
	}
	el.DeletedAt = nil
	return el.Clone(), nil
}

func (b *fakeBackend) maxZ(pageID string) int {
	top := -1
	for _, el := range b.elements {
		if el.PageID == pageID && el.DeletedAt == nil && el.ZIndex > top {
			top = el.ZIndex
		}
	}
	return top
}

// batchBackend adds batch saves to the fake.
type batchBackend struct {
	*fakeBackend
}

func (b batchBackend) SaveElements(ctx context.Context, _ string, items []BatchItem) ([]*Element, error) {
	b.mu.Lock()
	b.batches = append(b.batches, items)
	b.mu.Unlock()

	out := make([]*Element, 0, len(items))
	for _, it := range items {
		b.mu.Lock()
		el, ok := b.elements[it.ID]
		if ok {
			it.Patch.Apply(el)
			out = append(out, el.Clone())
		}
		b.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("batch %s: %w", it.ID, ErrNotFound)
		}
	}
	return out, nil
}

type note struct {
	Level   Level
	Message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recordingNotifier) Notify(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{Level: level, Message: message})
}

func (n *recordingNotifier) last() note {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notes) == 0 {
		return note{}
	}
	return n.notes[len(n.notes)-1]
}

func ptr[T any](v T) *T { return &v }

func geom(x, y, w, h float64) Geometry {
	return Geometry{X: x, Y: y, Width: w, Height: h}
}
