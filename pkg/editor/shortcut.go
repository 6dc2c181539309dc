package editor

import "strings"

// Shortcut is the closed set of keyboard actions the controller handles.
type Shortcut int

// Shortcuts.
const (
	ShortcutNone Shortcut = iota
	ShortcutUndo
	ShortcutRedo
	ShortcutDelete
	ShortcutSelectAll
	ShortcutDuplicate
	ShortcutNudgeLeft
	ShortcutNudgeRight
	ShortcutNudgeUp
	ShortcutNudgeDown
	ShortcutEscape
	ShortcutSave
)

var shortcutNames = [...]string{
	ShortcutNone:       "none",
	ShortcutUndo:       "undo",
	ShortcutRedo:       "redo",
	ShortcutDelete:     "delete",
	ShortcutSelectAll:  "select_all",
	ShortcutDuplicate:  "duplicate",
	ShortcutNudgeLeft:  "nudge_left",
	ShortcutNudgeRight: "nudge_right",
	ShortcutNudgeUp:    "nudge_up",
	ShortcutNudgeDown:  "nudge_down",
	ShortcutEscape:     "escape",
	ShortcutSave:       "save",
}

func (s Shortcut) String() string {
	if s < 0 || int(s) >= len(shortcutNames) {
		return "unknown"
	}
	return shortcutNames[s]
}

// IsNudge reports whether s moves the primary selection.
func (s Shortcut) IsNudge() bool {
	return s >= ShortcutNudgeLeft && s <= ShortcutNudgeDown
}

// KeyEvent is a key press as reported by the view layer. Key follows the
// DOM KeyboardEvent.key names ("z", "ArrowLeft", "Escape").
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool
	// Editable is set when focus is inside an input, textarea, select or
	// contentEditable element.
	Editable bool
}

// ResolveShortcut maps a key press to a Shortcut. Escape always resolves;
// everything else is ignored inside editable controls. Browser-reserved
// combinations resolve to ShortcutNone.
func ResolveShortcut(ev KeyEvent) Shortcut {
	if ev.Key == "Escape" {
		return ShortcutEscape
	}
	if ev.Editable || ev.Alt {
		return ShortcutNone
	}

	mod := ev.Ctrl || ev.Meta
	key := ev.Key
	if len([]rune(key)) == 1 {
		key = strings.ToLower(key)
	}

	if mod {
		switch key {
		case "z":
			if ev.Shift {
				return ShortcutRedo
			}
			return ShortcutUndo
		case "y":
			return ShortcutRedo
		case "a":
			return ShortcutSelectAll
		case "d":
			return ShortcutDuplicate
		case "s":
			return ShortcutSave
		}
		// Ctrl+Tab, Ctrl+N, Ctrl+W, Ctrl+Q and everything else belong to the browser.
		return ShortcutNone
	}

	switch key {
	case "Delete", "Backspace":
		return ShortcutDelete
	case "ArrowLeft":
		return ShortcutNudgeLeft
	case "ArrowRight":
		return ShortcutNudgeRight
	case "ArrowUp":
		return ShortcutNudgeUp
	case "ArrowDown":
		return ShortcutNudgeDown
	}
	return ShortcutNone
}
