package editor

import (
	"context"
	"log/slog"
	"time"
)

// Editor defaults.
const (
	DefaultActionSpacing  = 100 * time.Millisecond
	DefaultNudgeStep      = 1.0
	DefaultNudgeStepLarge = 10.0
	DefaultRotationSnap   = 15.0
	DefaultMinElementSize = 30.0
)

// Options configures a Session. Zero values take the defaults.
type Options struct {
	Logger   *slog.Logger
	Clock    Clock
	Notifier Notifier

	HistoryCapacity int
	DebounceWindow  time.Duration
	FrameInterval   time.Duration
	// ActionSpacing is the minimum time between two runs of the same
	// non-nudge shortcut.
	ActionSpacing time.Duration

	NudgeStep      float64
	NudgeStepLarge float64
	// GridSize snaps gesture geometry to multiples of itself. Zero disables snapping.
	GridSize       float64
	MinElementSize float64
	RotationSnap   float64
	// CanvasWidth and CanvasHeight bound the far edges. Zero leaves them unbounded.
	CanvasWidth  float64
	CanvasHeight float64

	OnForceSave  func(ctx context.Context) error
	OnCloseModal func()
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	if o.Notifier == nil {
		o.Notifier = SlogNotifier{Logger: o.Logger}
	}
	if o.HistoryCapacity <= 0 {
		o.HistoryCapacity = DefaultHistoryCapacity
	}
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = DefaultDebounceWindow
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = DefaultFrameInterval
	}
	if o.ActionSpacing <= 0 {
		o.ActionSpacing = DefaultActionSpacing
	}
	if o.NudgeStep <= 0 {
		o.NudgeStep = DefaultNudgeStep
	}
	if o.NudgeStepLarge <= 0 {
		o.NudgeStepLarge = DefaultNudgeStepLarge
	}
	if o.MinElementSize <= 0 {
		o.MinElementSize = DefaultMinElementSize
	}
	if o.RotationSnap <= 0 {
		o.RotationSnap = DefaultRotationSnap
	}
	return o
}
