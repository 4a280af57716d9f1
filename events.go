package main

import (
	"sync"
	"time"

	"lapsecast/pipeline"

	"github.com/gorilla/websocket"
)

// Hub receives pipeline events and fans them out to websocket subscribers.
// It also keeps a short history so /api/status can show recent activity.
type Hub struct {
	logger *Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	recent  []pipeline.Event
	closed  bool
}

func NewHub(logger *Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Emit implements pipeline.Sink. Messages are mirrored to the log; slow or
// broken subscribers are dropped.
func (h *Hub) Emit(ev pipeline.Event) {
	if ev.Kind == pipeline.KindMessage {
		h.logger.Printf("[%s] %s", ev.Scope, ev.Message)
	} else {
		h.logger.Debugf("[%s] %d%%", ev.Scope, ev.Progress)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.recent = append(h.recent, ev)
	if len(h.recent) > EventHistorySize {
		h.recent = h.recent[len(h.recent)-EventHistorySize:]
	}

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(EventWriteTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Subscribe registers a websocket client and replays the recent history to
// it. The caller owns the connection's read side.
func (h *Hub) Subscribe(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		conn.Close()
		return
	}

	for _, ev := range h.recent {
		conn.SetWriteDeadline(time.Now().Add(EventWriteTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			conn.Close()
			return
		}
	}
	h.clients[conn] = struct{}{}
}

// Unsubscribe drops a websocket client.
func (h *Hub) Unsubscribe(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Recent returns a copy of the retained event history.
func (h *Hub) Recent() []pipeline.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	events := make([]pipeline.Event, len(h.recent))
	copy(events, h.recent)
	return events
}

// Close disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
