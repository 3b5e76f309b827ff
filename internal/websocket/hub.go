package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"thewherewhat/internal/models"
)

// Event kinds pushed to live viewers. Clients treat cleanup as "refetch the
// visible set" and decay_tick as a pure re-render heartbeat.
const (
	EventNewBubble        = "new_bubble"
	EventUpdateBubble     = "update_bubble"
	EventCleanup          = "cleanup"
	EventDecayTick        = "decay_tick"
	EventNewSuggestion    = "new_suggestion"
	EventUpdateSuggestion = "update_suggestion"
)

// Event is the envelope serialized to every connected viewer.
type Event struct {
	Type       string             `json:"type"`
	Bubble     *models.Bubble     `json:"bubble,omitempty"`
	Suggestion *models.Suggestion `json:"suggestion,omitempty"`
}

// Hub maintains the set of connected live viewers and fans events out to all
// of them. Viewers are anonymous; there is no per-user routing.
type Hub struct {
	// Registered viewer connections.
	clients map[*Client]bool

	// Outbound events for all viewers.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Protects the clients map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket Hub started.")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			log.Printf("WebSocket client registered. Total viewers: %d", len(h.clients))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				log.Printf("WebSocket client unregistered. Total viewers: %d", len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; the message is dropped and the
					// client's pumps will prune it on the next error.
					log.Printf("Broadcast send buffer full for a viewer, dropping message")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ViewerCount returns the number of currently connected viewers.
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastEvent serializes an event and queues it for every viewer. Safe to
// call from actors and timer goroutines.
func (h *Hub) BroadcastEvent(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event.Type, err)
		return
	}
	select {
	case h.Broadcast <- payload:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing %s event. Hub might be busy or blocked.", event.Type)
	}
}
