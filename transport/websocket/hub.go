package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/snake-arena-backend/internal/snake"
)

// roomHub fans one room's outbound event stream out to its connected
// sockets. It is the sole subscriber of the room's event channel; the pump
// ends when the room stops and closes the channel.
type roomHub struct {
	logger *slog.Logger
	room   *snake.Game

	mu      sync.Mutex
	clients map[string]*client

	onStopped func(roomID string)
}

func newRoomHub(logger *slog.Logger, room *snake.Game, onStopped func(roomID string)) *roomHub {
	hub := &roomHub{
		logger:    logger.With("component", "room_hub", "room_id", room.ID()),
		room:      room,
		clients:   make(map[string]*client),
		onStopped: onStopped,
	}

	go hub.pump()

	return hub
}

func (that *roomHub) addClient(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c.playerID] = c
}

func (that *roomHub) removeClient(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if c, ok := that.clients[playerID]; ok {
		delete(that.clients, playerID)
		c.close()
	}
}

func (that *roomHub) pump() {
	for event := range that.room.Events() {
		that.dispatch(event)
	}

	// Room stopped; cut whatever sockets are left.
	that.mu.Lock()
	for id, c := range that.clients {
		delete(that.clients, id)
		c.close()
	}
	that.mu.Unlock()

	if that.onStopped != nil {
		that.onStopped(that.room.ID())
	}
}

func (that *roomHub) dispatch(event snake.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		that.logger.Error("failed to marshal event", "event_type", event.Type, "error", err)
		return
	}

	message, err := json.Marshal(Message{Action: string(event.Type), Payload: payload})
	if err != nil {
		that.logger.Error("failed to marshal envelope", "event_type", event.Type, "error", err)
		return
	}

	if event.TargetID != "" {
		that.sendToPlayer(event, message)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for _, c := range that.clients {
		c.enqueue(message)
	}
}

// sendToPlayer - delivers a targeted event. A rate-limit signal also bans
// the offender: their socket is dropped right after the notice.
func (that *roomHub) sendToPlayer(event snake.Event, message []byte) {
	that.mu.Lock()
	c, ok := that.clients[event.TargetID]
	that.mu.Unlock()

	if !ok {
		return
	}

	c.enqueue(message)

	if event.Type == snake.EventRateLimited {
		that.logger.Warn("rate limit exceeded, disconnecting player", "player_id", event.TargetID)
		that.removeClient(event.TargetID)
	}
}
