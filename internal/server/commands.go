package server

import "log/slog"

// WSCommand is a command received from a WebSocket client.
type WSCommand struct {
	Type string `json:"type"`
}

// CommandHandler processes WebSocket commands.
type CommandHandler struct {
	start func()
	stop  func()
	reset func()
	clear func() int
}

// NewCommandHandler creates a new command handler.
func NewCommandHandler(start, stop, reset func(), clear func() int) *CommandHandler {
	return &CommandHandler{
		start: start,
		stop:  stop,
		reset: reset,
		clear: clear,
	}
}

// Handle performs the requested action and then requests a status update.
// Unknown command types are logged and ignored.
func (h *CommandHandler) Handle(cmd WSCommand, triggerStatusUpdate func()) {
	switch cmd.Type {
	case "start":
		h.start()
	case "stop":
		h.stop()
	case "reset":
		h.reset()
	case "clear":
		n := h.clear()
		slog.Info("results cleared", "source", "websocket", "count", n)
	default:
		slog.Warn("unknown WebSocket command type", "type", cmd.Type)
		return
	}
	slog.Debug("WebSocket command handled", "type", cmd.Type)

	triggerStatusUpdate()
}
