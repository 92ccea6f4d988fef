// Package server provides the WebSocket live feed used by poolside scoreboards.
package server

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// upgrader accepts same-origin and local network connections only.
var upgrader = websocket.Upgrader{
	CheckOrigin: checkOrigin,
}

// checkOrigin allows requests without an Origin header, from the serving host,
// and from loopback or private network addresses.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		slog.Warn("rejected WebSocket connection", "origin", origin)
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}

	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsPrivate()) {
		return true
	}

	slog.Warn("rejected WebSocket connection", "origin", origin)
	return false
}

// UpgradeConnection upgrades an HTTP connection to WebSocket.
func UpgradeConnection(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}
