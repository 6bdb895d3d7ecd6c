// Package hub streams diagram updates to connected layout clients over
// Server-Sent Events.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"flowview/internal/service"
)

// Message types sent to clients
const (
	MessageFrame     = "frame"
	MessageTransform = "transform"
	MessageHighlight = "highlight"
)

// Message is one SSE payload
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Client represents a connected SSE client
type Client struct {
	id     string
	events chan []byte
}

// Hub manages SSE client connections
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan interface{}
	done       chan struct{}

	keepAlive time.Duration
	greeting  func() []Message
}

// New creates a new Hub
func New() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan interface{}, 256),
		done:       make(chan struct{}),
		keepAlive:  30 * time.Second,
	}
}

// SetGreeting sets the messages a client receives right after connecting, so
// late joiners see the current diagram. It must be called before Run.
func (h *Hub) SetGreeting(fn func() []Message) {
	h.greeting = fn
}

// Run starts the hub's event loop. It returns when ctx is cancelled, closing
// every client stream.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("SSE client connected: %s (total: %d)", client.id, n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.events)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("SSE client disconnected: %s (total: %d)", client.id, n)

		case event := <-h.broadcast:
			msg, err := encode(event)
			if err != nil {
				log.Printf("Failed to marshal event: %v", err)
				continue
			}

			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.events <- msg:
				default:
					log.Printf("SSE client %s is slow, skipping message", client.id)
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.events)
			}
			h.mu.Unlock()
			return
		}
	}
}

func encode(event interface{}) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("data: %s\n\n", data)), nil
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event interface{}) {
	select {
	case h.broadcast <- event:
	default:
		log.Println("Broadcast channel full, dropping event")
	}
}

// Forward relays controller events from bus to clients until ctx is cancelled
func (h *Hub) Forward(ctx context.Context, bus *service.EventBus) {
	ch := make(chan service.Event, 64)
	bus.Subscribe(ch)
	defer bus.Unsubscribe(ch)

	for {
		select {
		case ev := <-ch:
			h.Broadcast(ev)
		case <-ctx.Done():
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles SSE connections
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := &Client{
		id:     uuid.NewString(),
		events: make(chan []byte, 64),
	}

	// Queue the greeting before registering so it precedes any broadcast
	if h.greeting != nil {
		for _, m := range h.greeting() {
			msg, err := encode(m)
			if err != nil {
				log.Printf("Failed to marshal greeting: %v", err)
				continue
			}
			select {
			case client.events <- msg:
			default:
			}
		}
	}

	select {
	case h.register <- client:
	case <-h.done:
		http.Error(w, "hub stopped", http.StatusServiceUnavailable)
		return
	case <-r.Context().Done():
		return
	}
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
