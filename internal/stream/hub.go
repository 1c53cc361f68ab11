package stream

import (
	"context"
	"log"

	"github.com/gorilla/websocket"

	"smartwaste-cloud/internal/observability/metrics"
)

// Conn is the write side of one live subscriber connection.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub owns the live subscriber set. A single goroutine (Run) serves the
// register, unregister, and broadcast channels, so the set is never touched
// concurrently and every broadcast iterates a stable set: a connection
// registered while a broadcast is in flight joins only the next one.
type Hub struct {
	register   chan Conn
	unregister chan Conn
	broadcast  chan []byte
	conns      map[Conn]struct{}
	logger     *log.Logger
}

// NewHub constructs a hub. Run must be started before any registration or
// broadcast.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		register:   make(chan Conn),
		unregister: make(chan Conn),
		broadcast:  make(chan []byte),
		conns:      make(map[Conn]struct{}),
		logger:     logger,
	}
}

// Register adds a live subscriber connection.
func (h *Hub) Register(conn Conn) {
	if conn == nil {
		return
	}
	h.register <- conn
}

// Unregister removes and closes a subscriber connection.
func (h *Hub) Unregister(conn Conn) {
	if conn == nil {
		return
	}
	h.unregister <- conn
}

// Broadcast sends the payload to every currently registered connection.
// Delivery is fire-and-forget: a connection that fails its write is closed
// and removed, with no retry and no queueing for slow subscribers.
func (h *Hub) Broadcast(payload []byte) {
	h.broadcast <- payload
}

// Run serves hub events until the context is cancelled. Call it on its own
// goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case conn := <-h.register:
			h.conns[conn] = struct{}{}
			metrics.IncRegisteredSubscriber()
			metrics.SetLiveSubscribers(len(h.conns))
		case conn := <-h.unregister:
			h.drop(conn)
		case payload := <-h.broadcast:
			for conn := range h.conns {
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					h.logger.Printf("fanout hub: dropping subscriber: %v", err)
					h.drop(conn)
					metrics.IncDroppedSubscriber()
				}
			}
		case <-ctx.Done():
			for conn := range h.conns {
				h.drop(conn)
			}
			return
		}
	}
}

func (h *Hub) drop(conn Conn) {
	if _, ok := h.conns[conn]; !ok {
		return
	}
	delete(h.conns, conn)
	_ = conn.Close()
	metrics.SetLiveSubscribers(len(h.conns))
}
