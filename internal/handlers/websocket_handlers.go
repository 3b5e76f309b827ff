package handlers

import (
	"log"
	"net/http"

	"thewherewhat/internal/websocket"

	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Viewers are anonymous; the channel is push-only.
		return true
	},
}

// HandleWebSocket upgrades a viewer connection and registers it with the hub.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			// Cannot write an HTTP error after an upgrade attempt.
			return
		}

		client := &websocket.Client{
			Hub:  s.Hub,
			Conn: conn,
			Send: make(chan []byte, 256),
		}
		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
