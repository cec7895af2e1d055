package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rusq/dlog"

	"discordclear/internal/config"
)

// createUpgrader creates a WebSocket upgrader for the configured origins.
// Requests without an Origin header come from non-browser clients and are let through.
func createUpgrader(cfg config.Config) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || cfg.IsOriginAllowed(origin)
		},
	}
}

// HandleWebSocket handles the progress socket. The new connection becomes the
// only subscriber of the notifier.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := createUpgrader(h.Config)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		dlog.Printf("[WebSocket] upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.Notifier.Subscribe(conn)
	dlog.Printf("[WebSocket] New subscriber from %s", r.RemoteAddr)

	// クライアントからのメッセージは読み捨て（切断検知用）
	for {
		if _, _, err := conn.NextReader(); err != nil {
			h.Notifier.Unsubscribe(conn)
			dlog.Printf("[WebSocket] Subscriber %s disconnected: %v", r.RemoteAddr, err)
			break
		}
	}
}
