package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/pkg/logger"
)

const (
	streamWriteWait = 10 * time.Second
	streamPingEvery = 30 * time.Second
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub broadcasts scoring results to connected websocket clients. It
// satisfies the pipeline's Publisher interface, so every fresh result
// is streamed as it is produced.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	logger  *logger.Logger

	pingEvery time.Duration
}

// NewHub creates an empty broadcast hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]struct{}),
		logger:    log,
		pingEvery: streamPingEvery,
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends a scoring result to every connected client. Clients
// that fail to accept the write within the deadline are dropped.
func (h *Hub) Publish(result *contracts.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(result); err != nil {
			h.logger.WithError(err).Debug("Dropping slow websocket client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// HandleStream upgrades the request and keeps the connection registered
// until the client goes away.
// GET /api/stream
func (h *Hub) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", total).Debug("Websocket client connected")

	go h.pingLoop(conn)

	// Drain incoming frames so pong handling and close frames work.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(conn)
}

// pingLoop writes under h.mu so pings never interleave with a Publish
// broadcast; the websocket connection allows only one writer at a time.
func (h *Hub) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(h.pingEvery)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.Lock()
		if _, alive := h.clients[conn]; !alive {
			h.mu.Unlock()
			return
		}

		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		err := conn.WriteMessage(websocket.PingMessage, nil)
		h.mu.Unlock()

		if err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		conn.Close()
		delete(h.clients, conn)
	}
}
