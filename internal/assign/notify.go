package assign

import "log/slog"

// Notifier is the toast sink the screens surface outcomes through. All
// network failures end up here; none propagate to the caller's error
// boundary.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to a structured logger. It is the
// default sink when no UI-bound notifier is wired.
type LogNotifier struct {
	Logger *slog.Logger
}

// Success logs an informational notification.
func (n LogNotifier) Success(msg string) {
	if n.Logger != nil {
		n.Logger.Info("notify", slog.String("kind", "success"), slog.String("message", msg))
	}
}

// Error logs an error notification.
func (n LogNotifier) Error(msg string) {
	if n.Logger != nil {
		n.Logger.Error("notify", slog.String("kind", "error"), slog.String("message", msg))
	}
}
