package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 64
)

// client is one connected socket tied to one player in one room.
type client struct {
	playerID string
	logger   *slog.Logger
	conn     *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(playerID string, logger *slog.Logger, conn *websocket.Conn) *client {
	c := &client{
		playerID: playerID,
		logger:   logger,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
	}

	go c.writePump()

	return c
}

// enqueue - queues a message for the socket, dropping it when the client
// cannot keep up. The simulation must never block on a slow reader.
func (that *client) enqueue(message []byte) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	select {
	case that.send <- message:
	default:
		that.logger.Warn("client send buffer full, message dropped", "player_id", that.playerID)
	}
}

// enqueueAction - marshals an action envelope and queues it.
func (that *client) enqueueAction(action string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		that.logger.Error("failed to marshal payload", "action", action, "error", err)
		return
	}

	message, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		that.logger.Error("failed to marshal message", "action", action, "error", err)
		return
	}

	that.enqueue(message)
}

// close - stops the write pump and closes the socket. Safe to call twice.
func (that *client) close() {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return
	}
	that.closed = true
	close(that.send)
	that.mu.Unlock()

	_ = that.conn.Close()
}

func (that *client) writePump() {
	for message := range that.send {
		_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			that.logger.Debug("write failed, dropping client", "player_id", that.playerID, "error", err)
			_ = that.conn.Close()
			return
		}
	}
}
