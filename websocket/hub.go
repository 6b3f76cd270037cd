package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Message is one outbound frame on a claim room. Comments and claim updates
// are pushed through it; the payload is the already-projected entry.
type Message struct {
	Type      string    `json:"type"`
	ClaimID   uint      `json:"claim_id"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub manages the open connections, grouped into one room per claim. Writes
// to claims are made over REST; the hub only fans the results out to the
// staff watching that claim.
type Hub struct {
	rooms map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message

	log *logrus.Logger
	mu  sync.RWMutex
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 64),
		log:        log,
	}
}

// Run is the hub's main loop. Start it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.ClaimID] == nil {
				h.rooms[client.ClaimID] = make(map[*Client]bool)
			}
			h.rooms[client.ClaimID][client] = true
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{
				"user_id":  client.UserID,
				"claim_id": client.ClaimID,
			}).Debug("chat client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.ClaimID]; ok && room[client] {
				delete(room, client)
				close(client.send)
				if len(room) == 0 {
					delete(h.rooms, client.ClaimID)
				}
			}
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{
				"user_id":  client.UserID,
				"claim_id": client.ClaimID,
			}).Debug("chat client disconnected")

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// Broadcast queues a message for everyone in the claim's room. Safe to call
// from request handlers; never blocks them.
func (h *Hub) Broadcast(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.log.WithField("claim_id", message.ClaimID).Warn("chat broadcast queue full, dropping message")
	}
}

func (h *Hub) deliver(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal chat message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[message.ClaimID] {
		select {
		case client.send <- data:
		default:
			// Slow consumer; the read pump will unregister it.
			h.log.WithField("user_id", client.UserID).Warn("chat client send buffer full")
		}
	}
}

// RoomSize reports how many connections watch a claim.
func (h *Hub) RoomSize(claimID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[claimID])
}
