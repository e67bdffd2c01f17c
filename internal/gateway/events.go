package gateway

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/contentduet/duet/internal/agent"
	"github.com/contentduet/duet/internal/logging"
)

// runEvent is one pipeline progress notification on the wire.
type runEvent struct {
	RunID string `json:"run_id"`
	agent.Event
}

// eventHub fans run events out to every connected websocket. The feed
// is global; clients filter by run_id.
type eventHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
	log   *logging.Logger

	upgrader websocket.Upgrader
}

func newEventHub(log *logging.Logger) *eventHub {
	return &eventHub{
		conns: make(map[*websocket.Conn]bool),
		log:   log,
		upgrader: websocket.Upgrader{
			// The UI is served from the same origin; anything else
			// hitting the demo feed is harmless.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *eventHub) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		_ = conn.Close()
	}()

	// Drain client frames until the connection drops; the feed is
	// one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *eventHub) broadcast(event runEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			h.log.Warn("dropping event subscriber", "error", err)
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}
