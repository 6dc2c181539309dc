package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/journalapp/journal-server/pkg/domain"
)

// Handle is the part of an element a pointer gesture starts on.
type Handle int

// Handles. HandleBody drags, the eight compass handles resize and
// HandleRotate rotates around the element centre.
const (
	HandleBody Handle = iota
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
	HandleNW
	HandleRotate
)

func (h Handle) operation() Operation {
	switch h {
	case HandleBody:
		return OpDrag
	case HandleRotate:
		return OpRotate
	default:
		return OpResize
	}
}

// edges reports which element edges a resize handle moves.
func (h Handle) edges() (left, top, right, bottom bool) {
	switch h {
	case HandleN:
		return false, true, false, false
	case HandleNE:
		return false, true, true, false
	case HandleE:
		return false, false, true, false
	case HandleSE:
		return false, false, true, true
	case HandleS:
		return false, false, false, true
	case HandleSW:
		return true, false, false, true
	case HandleW:
		return true, false, false, false
	case HandleNW:
		return true, true, false, false
	}
	return false, false, false, false
}

// PointerEvent is a pointer event in canvas coordinates. ElementID is
// empty when the pointer is over the empty canvas.
type PointerEvent struct {
	X, Y      float64
	ElementID string
	Handle    Handle
	Shift     bool
	Ctrl      bool
	Meta      bool
}

type gesture struct {
	id         string
	op         Operation
	handle     Handle
	startX     float64
	startY     float64
	start      Geometry
	startAngle float64
}

type frameUpdate struct {
	id       string
	geometry Geometry
	kind     EventKind
}

// Controller turns key and pointer events into Store calls. Gesture
// feedback is throttled to one store update per frame; nudges are applied
// immediately and saved through the debouncer.
type Controller struct {
	ctx       context.Context
	store     *Store
	history   *History
	debouncer *Debouncer
	throttle  *FrameThrottle[frameUpdate]
	opts      Options
	logger    *slog.Logger

	mu           sync.Mutex
	gesture      *gesture
	lastAction   map[Shortcut]time.Time
	onForceSave  func(ctx context.Context) error
	onCloseModal func()
}

// NewController wires a controller to the store, history and debouncer.
func NewController(ctx context.Context, store *Store, history *History, debouncer *Debouncer, opts Options) *Controller {
	opts = opts.withDefaults()
	c := &Controller{
		ctx:          ctx,
		store:        store,
		history:      history,
		debouncer:    debouncer,
		opts:         opts,
		logger:       opts.Logger,
		lastAction:   make(map[Shortcut]time.Time),
		onForceSave:  opts.OnForceSave,
		onCloseModal: opts.OnCloseModal,
	}
	c.throttle = NewFrameThrottle(opts.Clock, opts.FrameInterval, c.applyFrame)
	return c
}

// SetForceSave replaces the Ctrl/Cmd+S hook.
func (c *Controller) SetForceSave(fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onForceSave = fn
}

// SetCloseModal replaces the Escape hook.
func (c *Controller) SetCloseModal(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCloseModal = fn
}

// Gesturing reports whether a drag, resize or rotate is in progress.
func (c *Controller) Gesturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gesture != nil
}

// HandleKeyDown runs the shortcut for ev. It returns true when the event
// was handled and the caller should prevent the browser default.
func (c *Controller) HandleKeyDown(ev KeyEvent) (handled bool) {
	sc := ResolveShortcut(ev)
	if sc == ShortcutNone {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("editor action panicked", "action", sc.String(), "panic", r)
			c.notify(LevelError, "Something went wrong")
			handled = true
		}
	}()

	if !sc.IsNudge() && sc != ShortcutEscape && !c.allow(sc) {
		return true
	}

	switch sc {
	case ShortcutUndo:
		return c.undo()
	case ShortcutRedo:
		return c.redo()
	case ShortcutDelete:
		return c.deleteSelected()
	case ShortcutSelectAll:
		return c.selectAll()
	case ShortcutDuplicate:
		return c.duplicateSelected()
	case ShortcutNudgeLeft, ShortcutNudgeRight, ShortcutNudgeUp, ShortcutNudgeDown:
		return c.nudge(sc, ev.Shift)
	case ShortcutEscape:
		return c.escape()
	case ShortcutSave:
		return c.forceSave()
	}
	return false
}

// HandleKeyUp reports whether the released key belongs to a shortcut, so
// the caller can suppress the matching browser default.
func (c *Controller) HandleKeyUp(ev KeyEvent) bool {
	return ResolveShortcut(ev) != ShortcutNone
}

// allow enforces the minimum spacing between repeated actions.
func (c *Controller) allow(sc Shortcut) bool {
	now := c.opts.Clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.lastAction[sc]; ok && now.Sub(last) < c.opts.ActionSpacing {
		return false
	}
	c.lastAction[sc] = now
	return true
}

func (c *Controller) undo() bool {
	if !c.history.CanUndo() {
		c.notify(LevelWarning, "Nothing to undo")
		return true
	}
	if _, err := c.history.Undo(c.ctx); err != nil {
		c.reportError("undo", err)
		return true
	}
	c.notify(LevelSuccess, "Undone")
	return true
}

func (c *Controller) redo() bool {
	if !c.history.CanRedo() {
		c.notify(LevelWarning, "Nothing to redo")
		return true
	}
	if _, err := c.history.Redo(c.ctx); err != nil {
		c.reportError("redo", err)
		return true
	}
	c.notify(LevelSuccess, "Redone")
	return true
}

func (c *Controller) deleteSelected() bool {
	id, ok := c.store.Primary()
	if !ok {
		return false
	}
	c.debouncer.Cancel(id)
	if err := c.store.Delete(c.ctx, id); err != nil {
		c.reportError("delete", err)
		return true
	}
	c.notify(LevelSuccess, "Element deleted")
	return true
}

func (c *Controller) selectAll() bool {
	n := c.store.SelectAll()
	if n == 0 {
		c.notify(LevelInfo, "No elements on this page")
		return true
	}
	c.notify(LevelInfo, fmt.Sprintf("Selected %d elements", n))
	return true
}

func (c *Controller) duplicateSelected() bool {
	id, ok := c.store.Primary()
	if !ok {
		return false
	}
	dup, err := c.store.Duplicate(c.ctx, id, nil)
	if err != nil {
		c.reportError("duplicate", err)
		return true
	}
	if err := c.store.Select(dup.ID, false); err != nil {
		c.logger.Debug("duplicate not selectable", "element_id", dup.ID, "error", err)
	}
	c.notify(LevelSuccess, "Element duplicated")
	return true
}

func (c *Controller) nudge(sc Shortcut, large bool) bool {
	id, ok := c.store.Primary()
	if !ok || c.Gesturing() {
		return ok
	}
	el, ok := c.store.ElementByID(id)
	if !ok {
		return false
	}

	step := c.opts.NudgeStep
	if large {
		step = c.opts.NudgeStepLarge
	}

	x, y := el.X, el.Y
	switch sc {
	case ShortcutNudgeLeft:
		x -= step
	case ShortcutNudgeRight:
		x += step
	case ShortcutNudgeUp:
		y -= step
	case ShortcutNudgeDown:
		y += step
	}
	x = c.clampAxis(x, el.Width, c.opts.CanvasWidth)
	y = c.clampAxis(y, el.Height, c.opts.CanvasHeight)
	if x == el.X && y == el.Y {
		return true
	}

	patch := Patch{X: &x, Y: &y}
	if _, err := c.store.applyLocal(id, patch, EventMove); err != nil {
		c.reportError("nudge", err)
		return true
	}
	c.debouncer.Schedule(id, patch)
	return true
}

func (c *Controller) escape() bool {
	c.Cancel()
	c.store.DeselectAll()

	c.mu.Lock()
	hook := c.onCloseModal
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return true
}

func (c *Controller) forceSave() bool {
	c.mu.Lock()
	hook := c.onForceSave
	c.mu.Unlock()

	if hook == nil {
		c.notify(LevelInfo, "Changes are saved automatically")
		return true
	}
	if err := hook(c.ctx); err != nil {
		c.reportError("save", err)
		return true
	}
	c.notify(LevelSuccess, "Saved")
	return true
}

// PointerDown selects the element under the pointer and starts a gesture.
// On the empty canvas it clears the selection.
func (c *Controller) PointerDown(ev PointerEvent) bool {
	if ev.ElementID == "" {
		c.store.DeselectAll()
		return false
	}
	if c.Gesturing() {
		return true
	}

	el, ok := c.store.ElementByID(ev.ElementID)
	if !ok {
		return false
	}
	if err := c.store.Select(el.ID, ev.Ctrl || ev.Meta); err != nil {
		return false
	}

	// Pending nudges for el reach the backend before the snapshot.
	if err := c.debouncer.FlushID(c.ctx, el.ID); err != nil {
		c.reportError("save", err)
	}

	op := ev.Handle.operation()
	if err := c.history.Begin(el.ID, op); err != nil {
		return false
	}

	cx, cy := el.X+el.Width/2, el.Y+el.Height/2
	c.mu.Lock()
	c.gesture = &gesture{
		id:         el.ID,
		op:         op,
		handle:     ev.Handle,
		startX:     ev.X,
		startY:     ev.Y,
		start:      el.Geometry,
		startAngle: math.Atan2(ev.Y-cy, ev.X-cx),
	}
	c.mu.Unlock()
	return true
}

// PointerMove recomputes the gesture geometry from the cumulative delta and
// queues it for the next frame.
func (c *Controller) PointerMove(ev PointerEvent) bool {
	c.mu.Lock()
	g := c.gesture
	c.mu.Unlock()
	if g == nil {
		return false
	}

	c.throttle.Submit(frameUpdate{id: g.id, geometry: c.compute(g, ev), kind: eventFor(g.op)})
	return true
}

// PointerUp applies the final geometry, commits the history entry and
// saves the element.
func (c *Controller) PointerUp(ev PointerEvent) bool {
	c.mu.Lock()
	g := c.gesture
	c.gesture = nil
	c.mu.Unlock()
	if g == nil {
		return false
	}

	c.throttle.Cancel()
	final := c.compute(g, ev)
	if el, ok := c.store.ElementByID(g.id); ok && !sameGeometry(el.Geometry, final) {
		if _, err := c.store.applyLocal(g.id, geometryPatch(final), eventFor(g.op)); err != nil {
			c.history.Cancel()
			c.reportError(string(g.op), err)
			return true
		}
	}

	if !c.history.Commit() {
		return true
	}
	if _, err := c.store.Save(c.ctx, g.id, geometryPatch(final)); err != nil {
		c.reportError(string(g.op), err)
	}
	return true
}

// Cancel abandons the gesture in progress and restores the geometry
// captured when it started. Nothing is sent to the backend.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	g := c.gesture
	c.gesture = nil
	c.mu.Unlock()
	if g == nil {
		return false
	}

	c.throttle.Cancel()
	c.history.Cancel()
	if el, ok := c.store.ElementByID(g.id); ok && !sameGeometry(el.Geometry, g.start) {
		if _, err := c.store.applyLocal(g.id, geometryPatch(g.start), eventFor(g.op)); err != nil {
			c.logger.Warn("revert gesture", "element_id", g.id, "error", err)
		}
	}
	return true
}

// stop cancels the gesture and any queued frame without touching the store.
func (c *Controller) stop() {
	c.mu.Lock()
	c.gesture = nil
	c.mu.Unlock()
	c.throttle.Cancel()
}

func (c *Controller) applyFrame(u frameUpdate) {
	if _, err := c.store.applyLocal(u.id, geometryPatch(u.geometry), u.kind); err != nil {
		c.logger.Debug("frame update dropped", "element_id", u.id, "error", err)
	}
}

func (c *Controller) compute(g *gesture, ev PointerEvent) Geometry {
	dx, dy := ev.X-g.startX, ev.Y-g.startY
	out := g.start

	switch g.op {
	case OpDrag:
		out.X = c.clampAxis(c.snap(g.start.X+dx), g.start.Width, c.opts.CanvasWidth)
		out.Y = c.clampAxis(c.snap(g.start.Y+dy), g.start.Height, c.opts.CanvasHeight)

	case OpResize:
		minSize := c.opts.MinElementSize
		left, top := g.start.X, g.start.Y
		right, bottom := left+g.start.Width, top+g.start.Height
		moveL, moveT, moveR, moveB := g.handle.edges()

		if moveL {
			left = min(max(c.snap(left+dx), 0), right-minSize)
		}
		if moveR {
			right = c.snap(right + dx)
			if c.opts.CanvasWidth > 0 {
				right = min(right, c.opts.CanvasWidth)
			}
			right = max(right, left+minSize)
		}
		if moveT {
			top = min(max(c.snap(top+dy), 0), bottom-minSize)
		}
		if moveB {
			bottom = c.snap(bottom + dy)
			if c.opts.CanvasHeight > 0 {
				bottom = min(bottom, c.opts.CanvasHeight)
			}
			bottom = max(bottom, top+minSize)
		}
		out.X, out.Y = left, top
		out.Width, out.Height = right-left, bottom-top

	case OpRotate:
		cx, cy := g.start.X+g.start.Width/2, g.start.Y+g.start.Height/2
		angle := math.Atan2(ev.Y-cy, ev.X-cx)
		deg := domain.NormalizeRotation(g.start.Rotation + (angle-g.startAngle)*180/math.Pi)
		if ev.Shift {
			deg = domain.NormalizeRotation(math.Round(deg/c.opts.RotationSnap) * c.opts.RotationSnap)
		}
		out.Rotation = deg
	}
	return out
}

func (c *Controller) snap(v float64) float64 {
	if c.opts.GridSize <= 0 {
		return v
	}
	return math.Round(v/c.opts.GridSize) * c.opts.GridSize
}

// clampAxis keeps a position non-negative and, with a bounded canvas,
// keeps the far edge inside it.
func (c *Controller) clampAxis(pos, size, bound float64) float64 {
	if bound > 0 {
		pos = min(pos, bound-size)
	}
	return max(pos, 0)
}

func (c *Controller) notify(level Level, message string) {
	c.opts.Notifier.Notify(level, message)
}

// reportError turns a failed action into a user-facing notification.
func (c *Controller) reportError(action string, err error) {
	c.logger.Warn("editor action failed", "action", action, "error", err)

	level, msg := LevelError, "Something went wrong, please try again"
	switch {
	case errors.Is(err, ErrElementGone):
		level, msg = LevelWarning, "That element no longer exists"
	case errors.Is(err, ErrGestureActive):
		level, msg = LevelWarning, "Finish the current edit first"
	case errors.Is(err, ErrNotFound):
		msg = "Element not found, it may have been deleted elsewhere"
	case errors.Is(err, ErrForbidden):
		msg = "You do not have permission to edit this page"
	case errors.Is(err, ErrUnauthorized):
		msg = "Your session has expired, please sign in again"
	case errors.Is(err, ErrValidation):
		var ve *ValidationError
		if errors.As(err, &ve) {
			msg = "Invalid " + ve.Field + ": " + ve.Message
		} else {
			msg = "The change was rejected as invalid"
		}
	case errors.Is(err, ErrNetwork):
		msg = "Network error, your change was not saved"
	}
	c.notify(level, msg)
}

func eventFor(op Operation) EventKind {
	switch op {
	case OpResize:
		return EventResize
	case OpRotate:
		return EventRotate
	default:
		return EventMove
	}
}
