package realtime

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Broadcaster pushes an event to every connected client. Delivery is
// best-effort: a write failure drops that client, nothing else.
type Broadcaster interface {
	Emit(event string, payload any) error
}

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub tracks websocket clients and fans broadcast events out to all of them.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the SPA origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     log.With(zap.String("component", "realtime")),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeWS upgrades the connection and keeps it registered until the client
// goes away. Clients only listen; inbound frames are discarded.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.log.Info("Client connected", zap.String("remote", conn.RemoteAddr().String()), zap.Int("clients", total))

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Emit broadcasts an event to all connected clients.
func (h *Hub) Emit(event string, payload any) error {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	msg := envelope{Event: event, Data: payload}

	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Warn("Broadcast write failed, dropping client",
				zap.String("remote", conn.RemoteAddr().String()),
				zap.Error(err))
			h.drop(conn)
		}
	}

	return nil
}

// ClientCount reports connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}
