package editor

import (
	"sync"
	"time"
)

// DefaultFrameInterval is one animation frame at 60Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameThrottle delivers at most one value per frame. Values submitted
// within the same frame are coalesced; only the latest is delivered.
//
// Cancel and Flush wait for a delivery already in flight, so once Cancel
// returns no earlier value can still land. deliver must not call back
// into Cancel or Flush.
type FrameThrottle[T any] struct {
	clock    Clock
	interval time.Duration
	deliver  func(T)

	// deliverMu is held from take until deliver returns.
	deliverMu sync.Mutex

	mu        sync.Mutex
	latest    T
	hasValue  bool
	timer     Timer
	scheduled bool
}

// NewFrameThrottle creates a throttle calling deliver once per interval.
func NewFrameThrottle[T any](clock Clock, interval time.Duration, deliver func(T)) *FrameThrottle[T] {
	if clock == nil {
		clock = SystemClock
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &FrameThrottle[T]{clock: clock, interval: interval, deliver: deliver}
}

// Submit records v and schedules a frame if none is pending.
func (f *FrameThrottle[T]) Submit(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = v
	f.hasValue = true
	if f.scheduled {
		return
	}
	f.scheduled = true
	f.timer = f.clock.AfterFunc(f.interval, f.frame)
}

func (f *FrameThrottle[T]) frame() {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	f.mu.Lock()
	if !f.scheduled {
		f.mu.Unlock()
		return
	}
	f.scheduled = false
	v, ok := f.take()
	f.mu.Unlock()

	if ok {
		f.deliver(v)
	}
}

// Flush delivers the pending value immediately, if any.
func (f *FrameThrottle[T]) Flush() {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	f.mu.Lock()
	f.stopTimer()
	v, ok := f.take()
	f.mu.Unlock()

	if ok {
		f.deliver(v)
	}
}

// Cancel drops the pending value and waits out any delivery in progress.
func (f *FrameThrottle[T]) Cancel() {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimer()
	f.take()
}

func (f *FrameThrottle[T]) stopTimer() {
	if f.timer != nil {
		f.timer.Stop()
	}
	f.scheduled = false
}

func (f *FrameThrottle[T]) take() (T, bool) {
	var zero T
	if !f.hasValue {
		return zero, false
	}
	v := f.latest
	f.latest = zero
	f.hasValue = false
	return v, true
}
