// Package feed streams combat log events to websocket subscribers. The hub
// implements logging.Sink so it plugs into the event router like any other
// sink; browser tooling subscribes to watch a session live.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"emberveil/combat/logging"
)

const writeWait = 5 * time.Second

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub fans combat events out to connected websocket clients. Slow or broken
// clients are disconnected rather than allowed to stall the feed.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
	closed      atomic.Bool
	upgrader    websocket.Upgrader
	logger      *log.Logger
}

// NewHub creates an empty hub. Pass nil to use the default logger.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		subscribers: make(map[string]*subscriber),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the request and registers the client for event
// broadcasts.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.closed.Load() {
		http.Error(w, "feed closed", http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("feed: upgrade failed: %v", err)
		return
	}

	id := fmt.Sprintf("feed-%d", h.nextID.Add(1))
	sub := &subscriber{conn: conn}
	h.mu.Lock()
	h.subscribers[id] = sub
	h.mu.Unlock()

	// Drain control frames until the client goes away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.disconnect(id)
				return
			}
		}
	}()
}

// SubscriberCount reports connected clients.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Write broadcasts one event to every subscriber. Implements logging.Sink.
func (h *Hub) Write(event logging.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("feed: marshal event: %w", err)
	}
	h.broadcast(data)
	return nil
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			h.logger.Printf("feed: dropping %s: %v", id, err)
			h.disconnect(id)
		}
	}
}

func (h *Hub) disconnect(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

// Close sends close frames to every subscriber and drops them. Implements
// logging.Sink.
func (h *Hub) Close(context.Context) error {
	h.closed.Store(true)
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[string]*subscriber)
	h.mu.Unlock()

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed shutting down")
	for _, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		sub.conn.WriteMessage(websocket.CloseMessage, message)
		sub.mu.Unlock()
		sub.conn.Close()
	}
	return nil
}

var _ logging.Sink = (*Hub)(nil)
