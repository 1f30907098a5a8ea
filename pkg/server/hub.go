package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// hub fans out state updates to the WebSocket clients watching one history.
// Writes happen with the owning entry locked, so each connection has at
// most one writer at a time.
type hub struct {
	clients map[*websocket.Conn]bool
	closed  bool
	mu      sync.RWMutex
	logger  *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

// add registers conn and sends it the current state.
// A closed hub turns the connection away.
func (h *hub) add(conn *websocket.Conn, st State) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		closeConn(conn, "history deleted")
		return
	}
	h.clients[conn] = true
	h.mu.Unlock()

	h.send(conn, st)
}

// remove drops conn and closes it.
func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	if ok {
		conn.Close()
	}
}

// broadcast sends st to every client.
func (h *hub) broadcast(st State) {
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.send(client, st)
	}
}

func (h *hub) send(conn *websocket.Conn, st State) {
	data, err := json.Marshal(st)
	if err != nil {
		h.logger.Error("encode state", "error", err)
		return
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
		h.remove(conn)
	}
}

// count returns the number of connected clients.
func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// close sends a close frame to every client and disconnects them.
// Clients added afterwards are closed immediately.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for client := range h.clients {
		closeConn(client, "history deleted")
		delete(h.clients, client)
	}
}

// closeConn sends a going-away close frame and closes conn.
func closeConn(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	conn.Close()
}
