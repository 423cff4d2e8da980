package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
)

const eventQueueSize = 64

// Hub fans participation events out to the connected managers
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	events     chan dto.ParticipationEvent
	register   chan *Client
	unregister chan *Client
	// Closed when Run returns
	done chan struct{}

	// Guards clients for ClientCount
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		events:     make(chan dto.ParticipationEvent, eventQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is done, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.events:
			h.broadcast(event)

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// ParticipationChanged queues an event for broadcast. Events are dropped when the queue is full.
func (h *Hub) ParticipationChanged(event dto.ParticipationEvent) {
	select {
	case h.events <- event:
	default:
		h.logger.Warn().
			Str("participationID", event.ParticipationID).
			Msg("Event queue full, participation event dropped")
	}
}

// Register adds client to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client from the hub if it is still running
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	h.logger.Info().
		Str("userID", client.userID).
		Bool("allMinistries", client.scope.all).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)

		h.logger.Info().Str("userID", client.userID).Msg("Client unregistered")
	}
}

// broadcast sends event to every client watching its ministry.
// Clients whose send buffer is full are disconnected.
func (h *Hub) broadcast(event dto.ParticipationEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("participationID", event.ParticipationID).Msg("Failed to marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for client := range h.clients {
		if !client.scope.covers(event.MinistryID) {
			continue
		}
		select {
		case client.send <- data:
			delivered++
		default:
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn().Str("userID", client.userID).Msg("Slow client disconnected")
		}
	}

	h.logger.Debug().
		Str("type", event.Type).
		Str("ministryID", event.MinistryID).
		Int("clientCount", delivered).
		Msg("Participation event broadcasted")
}
