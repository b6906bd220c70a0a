package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/shriram-s7/fleetdispatch/core/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleStateStream pushes a full world snapshot to the client after every
// simulation tick. The connection is dropped if the client cannot keep up.
func (s *Server) handleStateStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("websocket upgrade: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sub := s.bus.SubscribeBuffered(16)
	defer s.bus.Unsubscribe(sub)

	// Drain client frames so pings and close messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(s.sim.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if _, isTick := ev.(events.TickEvent); !isTick {
				continue
			}
			if err := conn.WriteJSON(s.sim.Snapshot()); err != nil {
				return
			}
		}
	}
}
