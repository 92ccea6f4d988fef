// Package util provides shared helpers used across the stopwatch.
package util

import (
	"io"
	"log/slog"
)

// SafeClose closes c and logs any error. A nil closer is ignored.
func SafeClose(c io.Closer, name string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("failed to close resource", "resource", name, "error", err)
	}
}

// SafeCloseFunc returns a defer-friendly closure around SafeClose.
func SafeCloseFunc(c io.Closer, name string) func() {
	return func() {
		SafeClose(c, name)
	}
}
