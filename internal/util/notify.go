package util

import "log/slog"

// LogNotifyResult runs a notification sender and logs its outcome.
// Errors are logged here, so nothing is returned.
func LogNotifyResult(fn func() error, notifyType string) {
	if err := fn(); err != nil {
		slog.Error("notification failed", "type", notifyType, "error", err)
		return
	}
	slog.Debug("notification sent", "type", notifyType)
}
