package stream

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// Handler upgrades live-update clients and hands them to the hub. No
// handshake payload is expected; the client just receives snapshots.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewHandler constructs the upgrade handler. Cross-origin upgrades are
// limited to the given allow-list; requests without an Origin header (plain
// clients, same-origin) pass.
func NewHandler(hub *Hub, allowedOrigins []string, logger *log.Logger) (*Handler, error) {
	if hub == nil {
		return nil, errors.New("live stream: nil hub")
	}
	if logger == nil {
		logger = log.Default()
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	h := &Handler{hub: hub, logger: logger}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
	return h, nil
}

// ServeHTTP handles GET /ws.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Printf("live stream: upgrade: %v", err)
		return
	}
	h.hub.Register(conn)

	// Clients send nothing over this channel; the read loop exists to
	// notice a disconnect before the next broadcast does.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.hub.Unregister(conn)
				return
			}
		}
	}()
}
