package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/qboard/backend/internal/cache"
)

// Hub tracks connected moderators and pushes queue-count updates to them.
// Updates arrive over the redis queue-event channel so every server
// instance sees batches processed anywhere.
type Hub struct {
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	redis *cache.RedisClient

	mu sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(redis *cache.RedisClient) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		redis:      redis,
	}
}

// Run starts the hub
func (h *Hub) Run() {
	go h.subscribeToQueueEvents()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = client
			h.mu.Unlock()
			log.Printf("Moderator connected: %s", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("Moderator disconnected: %s", client.userID)
		}
	}
}

// subscribeToQueueEvents relays redis queue events to the owning moderator
func (h *Hub) subscribeToQueueEvents() {
	pubsub := h.redis.SubscribeToQueueEvents()
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var event cache.QueueEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			continue
		}
		if err := h.SendToUser(event.UserID, event); err != nil {
			log.Printf("Failed to push queue event to %s: %v", event.UserID, err)
		}
	}
}

// SendToUser sends a message to a specific connected moderator
func (h *Hub) SendToUser(userID uuid.UUID, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if ok {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, skip
		}
	}

	return nil
}

// IsUserOnline checks if a moderator has an open connection
func (h *Hub) IsUserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.clients[userID]
	return ok
}
