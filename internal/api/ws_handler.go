package api

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	ws "github.com/maildeck/server/internal/websocket"
)

// WebSocketHandler handles the /api/v1/ws endpoint for real-time update
// notifications.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler instance.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// This server runs on localhost for a local UI; cross-origin
		// browsers are not part of the deployment.
		return true
	},
}

// Handle upgrades the connection and registers it with the hub. The
// connection only ever receives broadcasts; inbound messages are
// drained until the peer closes.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocketHandler: Upgrade failed: %v", err)
		return
	}

	client := h.hub.Register(conn)
	if client == nil {
		return
	}
	defer h.hub.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
