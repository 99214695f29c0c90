package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/pkg/logger"
)

// Event is the envelope pushed to connected admin dashboards.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

// Hub fans events out to every connected admin client. Clients that cannot
// keep up are dropped rather than blocking the broadcast.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		events:     make(chan []byte, 256),
	}
}

// Run processes registrations and broadcasts. Call once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			logger.Info("Admin dashboard connected", map[string]interface{}{
				"user_id":     client.UserID,
				"connections": h.ClientCount(),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logger.Info("Admin dashboard disconnected", map[string]interface{}{
				"user_id":     client.UserID,
				"connections": h.ClientCount(),
			})

		case message := <-h.events:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop the connection
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ClientCount returns the number of connected dashboards.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastOrderCreated notifies dashboards about a newly persisted order.
func (h *Hub) BroadcastOrderCreated(order *model.Order) {
	h.broadcast(EventOrderCreated, order)
}

// BroadcastOrderStatusChanged notifies dashboards about a status transition.
func (h *Hub) BroadcastOrderStatusChanged(order *model.Order) {
	h.broadcast(EventOrderStatusChanged, order)
}

func (h *Hub) broadcast(eventType string, payload interface{}) {
	data, err := json.Marshal(Event{
		Type:    eventType,
		Payload: payload,
		SentAt:  time.Now(),
	})
	if err != nil {
		logger.Error("Failed to encode dashboard event", err, map[string]interface{}{
			"type": eventType,
		})
		return
	}

	select {
	case h.events <- data:
	default:
		logger.Warn("Dashboard event dropped: broadcast queue full", map[string]interface{}{
			"type": eventType,
		})
	}
}
