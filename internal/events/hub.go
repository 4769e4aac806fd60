// Package events pushes domain events to websocket clients, optionally
// fanning them out across instances through a relay.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Relay transports encoded envelopes between instances.
type Relay interface {
	Publish(ctx context.Context, data []byte) error
	Subscribe(ctx context.Context, handler func(data []byte)) error
}

// Publisher is the side of the hub that request handlers use.
type Publisher interface {
	Publish(ctx context.Context, target, msgType string, payload interface{}) error
}

type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *envelope
	done       chan struct{}

	relay Relay
}

// NewHub creates a hub. relay may be nil for a single instance.
func NewHub(relay Relay) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *envelope, 256),
		done:       make(chan struct{}),
		relay:      relay,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	if h.relay != nil {
		go func() {
			if err := h.relay.Subscribe(ctx, h.deliver); err != nil {
				slog.Error("event relay stopped", "error", err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			slog.Info("events client connected", "user_id", client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			slog.Info("events client disconnected", "user_id", client.UserID)

		case env := <-h.broadcast:
			h.mu.Lock()
			if env.client != nil {
				if h.clients[env.client] {
					h.enqueue(env.client, env.Message)
				}
				h.mu.Unlock()
				continue
			}
			for client := range h.clients {
				if env.Target != "" && client.UserID != env.Target {
					continue
				}
				h.enqueue(client, env.Message)
			}
			h.mu.Unlock()
		}
	}
}

// enqueue hands msg to client, dropping the client when its buffer is full.
// Callers hold h.mu.
func (h *Hub) enqueue(client *Client, msg []byte) {
	select {
	case client.send <- msg:
	default:
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	close(h.done)
}

// Publish sends an event to target's connections, or to everyone when target
// is empty. With a relay the event takes the relay path so that every
// instance, this one included, delivers it.
func (h *Hub) Publish(ctx context.Context, target, msgType string, payload interface{}) error {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	data, err := json.Marshal(envelope{Target: target, Message: msg})
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	if h.relay != nil {
		return h.relay.Publish(ctx, data)
	}
	h.deliver(data)
	return nil
}

func (h *Hub) deliver(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("dropping malformed event", "error", err)
		return
	}
	select {
	case h.broadcast <- &env:
	case <-h.done:
	}
}

// reply queues msg for a single connection on this instance.
func (h *Hub) reply(client *Client, msg []byte) {
	select {
	case h.broadcast <- &envelope{Message: msg, client: client}:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
