package main

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth already happened in the middleware; origin checks do not apply
	// to a token-authenticated local API
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleEvents upgrades to a websocket and streams pipeline events until the
// client disconnects. The recent history is replayed on connect.
func (s *APIServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debugf("Event stream upgrade failed: %v", err)
		return
	}

	s.hub.Subscribe(conn)
	s.logger.Debugf("Event stream client connected: %s", conn.RemoteAddr())

	// Drain control frames; returning unsubscribes on any read error
	go func() {
		defer s.hub.Unsubscribe(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
