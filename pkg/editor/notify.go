package editor

import (
	"context"
	"log/slog"
)

// Level is the severity of a user-facing notification.
type Level int

// Notification levels.
const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

// Notify calls f.
func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// SlogNotifier writes notifications to a logger.
type SlogNotifier struct {
	Logger *slog.Logger
}

// Notify logs message at a level matching the notification.
func (n SlogNotifier) Notify(level Level, message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var sl slog.Level
	switch level {
	case LevelWarning:
		sl = slog.LevelWarn
	case LevelError:
		sl = slog.LevelError
	default:
		sl = slog.LevelInfo
	}
	logger.Log(context.Background(), sl, message, "notification", level.String())
}
