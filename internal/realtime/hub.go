// Package realtime fans out coarse invalidation events over websockets. Events
// carry no row data, only a hint of what changed; consumers re-query.
package realtime

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// Event tells subscribers that rows of Table changed. Recipients limits fan-out
// to the users allowed to observe the change.
type Event struct {
	Table          string      `json:"table"`
	ConversationID *uuid.UUID  `json:"conversation_id,omitempty"`
	Recipients     []uuid.UUID `json:"-"`
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Publish queues an invalidation event. Safe on a nil hub so services can run
// without a feed in tests.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- ev:
	default:
		slog.Warn("realtime feed backlogged, dropping event", "table", ev.Table)
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case ev := <-h.broadcast:
			payload, err := json.Marshal(ev)
			if err != nil {
				slog.Error("marshal event", "err", err)
				continue
			}
			for client := range h.clients {
				if !ev.wants(client.userID) {
					continue
				}
				select {
				case client.send <- payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

func (ev Event) wants(userID uuid.UUID) bool {
	for _, id := range ev.Recipients {
		if id == userID {
			return true
		}
	}
	return false
}
