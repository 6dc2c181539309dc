package editor

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
)

// DefaultDebounceWindow is the quiet period before a pending save fires.
const DefaultDebounceWindow = 150 * time.Millisecond

// SaveFunc persists a coalesced patch for one element.
type SaveFunc func(ctx context.Context, id string, patch Patch) error

type debounceTask struct {
	patch Patch
	timer Timer
	seq   uint64
}

// Debouncer coalesces saves per element. Scheduling an element that is
// already pending merges the patch, latest fields winning, and restarts the
// quiet period, so a burst produces one trailing call.
type Debouncer struct {
	clock   Clock
	window  time.Duration
	save    SaveFunc
	onError func(id string, err error)

	mu      sync.Mutex
	pending map[string]*debounceTask
	stopped bool
	// ctx is used for saves fired by the timer.
	ctx context.Context
}

// NewDebouncer creates a debouncer that calls save after window of quiet.
func NewDebouncer(ctx context.Context, clock Clock, window time.Duration, save SaveFunc, onError func(string, error)) *Debouncer {
	if clock == nil {
		clock = SystemClock
	}
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if onError == nil {
		onError = func(string, error) {}
	}
	return &Debouncer{
		clock:   clock,
		window:  window,
		save:    save,
		onError: onError,
		pending: make(map[string]*debounceTask),
		ctx:     ctx,
	}
}

// Schedule queues patch for id.
func (d *Debouncer) Schedule(id string, patch Patch) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	task, ok := d.pending[id]
	if ok {
		task.timer.Stop()
		task.patch = mergePatch(task.patch, patch)
	} else {
		task = &debounceTask{patch: patch}
		d.pending[id] = task
	}
	task.seq++
	seq := task.seq
	task.timer = d.clock.AfterFunc(d.window, func() { d.fire(id, task, seq) })
}

func (d *Debouncer) fire(id string, task *debounceTask, seq uint64) {
	d.mu.Lock()
	// A rescheduled or flushed task no longer owns the slot.
	if d.pending[id] != task || task.seq != seq {
		d.mu.Unlock()
		return
	}
	delete(d.pending, id)
	patch := task.patch
	ctx := d.ctx
	d.mu.Unlock()

	if err := d.save(ctx, id, patch); err != nil {
		d.onError(id, err)
	}
}

// Pending reports whether id has a save waiting.
func (d *Debouncer) Pending(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[id]
	return ok
}

// Len returns the number of pending saves.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Drain cancels every pending timer and returns the patches they carried.
func (d *Debouncer) Drain() map[string]Patch {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]Patch, len(d.pending))
	for id, task := range d.pending {
		task.timer.Stop()
		out[id] = task.patch
	}
	clear(d.pending)
	return out
}

// Flush fires every pending save now, in id order, and joins the errors.
func (d *Debouncer) Flush(ctx context.Context) error {
	drained := d.Drain()
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(drained)) {
		if err := d.save(ctx, id, drained[id]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FlushID fires the pending save for id now, if there is one.
func (d *Debouncer) FlushID(ctx context.Context, id string) error {
	d.mu.Lock()
	task, ok := d.pending[id]
	if ok {
		task.timer.Stop()
		delete(d.pending, id)
	}
	d.mu.Unlock()
	if !ok {
		return nil
	}
	return d.save(ctx, id, task.patch)
}

// Stop cancels all pending saves without firing them. Later Schedule
// calls are ignored.
func (d *Debouncer) Stop() {
	d.Drain()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

// Cancel drops the pending save for id, if any.
func (d *Debouncer) Cancel(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if task, ok := d.pending[id]; ok {
		task.timer.Stop()
		delete(d.pending, id)
	}
}
